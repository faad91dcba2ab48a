package logger

import (
	"io"
	"os"
	"strings"

	"fruit-api/config"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Init must run before any package logs.
var Log = logrus.New()

// Init resets Log to text output on stdout at info level.
func Init() {
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	Log.SetLevel(logrus.InfoLevel)
}

// Setup applies the log section of the configuration. When a file is set,
// entries go to both stdout and a size-rotated file.
func Setup(cfg config.LogConfig) {
	Init()

	if level, err := logrus.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
		Log.SetLevel(level)
	} else {
		Log.WithField("level", cfg.Level).Warn("Unknown log level, falling back to info")
	}

	if strings.EqualFold(cfg.Format, "json") {
		Log.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.File != "" {
		Log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     7,
			Compress:   true,
		}))
	}
}

// MaskEmail keeps the first character of the local part, e.g. j***@example.com.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
