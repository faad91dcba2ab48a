package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Name           string `mapstructure:"name"`
	SSLMode        string `mapstructure:"sslmode"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// DSN returns the postgres connection URL, password included.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// SafeDSN is DSN with the password masked, for logs.
func (d DatabaseConfig) SafeDSN() string {
	return fmt.Sprintf("postgres://%s:***@%s:%s/%s?sslmode=%s",
		d.User, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type JWTConfig struct {
	SecretKey       string        `mapstructure:"secret_key"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type EmailConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	User        string        `mapstructure:"user"`
	Password    string        `mapstructure:"password"`
	From        string        `mapstructure:"from"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

// ResetConfig drives the password reset workflow.
type ResetConfig struct {
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	FrontendBaseURL string        `mapstructure:"frontend_base_url"`
	// ExposeTestToken echoes the issued token in the forgot-password response. Development only.
	ExposeTestToken bool `mapstructure:"expose_test_token"`
	// ConcealUnknownEmail answers forgot-password for an unknown address exactly as for a known one.
	ConcealUnknownEmail bool          `mapstructure:"conceal_unknown_email"`
	RequestLimit        int           `mapstructure:"request_limit"`
	RequestWindow       time.Duration `mapstructure:"request_window"`
	BcryptCost          int           `mapstructure:"bcrypt_cost"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Email    EmailConfig    `mapstructure:"email"`
	Reset    ResetConfig    `mapstructure:"reset"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.migrations_path", "file://db/migrations")

	v.SetDefault("redis.port", "6379")

	v.SetDefault("jwt.access_token_ttl", 30*time.Minute)
	v.SetDefault("jwt.refresh_token_ttl", 7*24*time.Hour)

	v.SetDefault("email.port", 587)
	v.SetDefault("email.send_timeout", 30*time.Second)

	v.SetDefault("reset.token_ttl", 10*time.Minute)
	v.SetDefault("reset.max_attempts", 3)
	v.SetDefault("reset.frontend_base_url", "http://127.0.0.1:5500")
	v.SetDefault("reset.request_limit", 5)
	v.SetDefault("reset.request_window", 15*time.Minute)
	v.SetDefault("reset.bcrypt_cost", 12)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("cors.allowed_origins", []string{
		"http://127.0.0.1:5500",
		"http://localhost:5500",
	})
}

// LoadConfig reads config.yml from path (if present) and overlays environment
// variables such as JWT_SECRET_KEY or RESET_MAX_ATTEMPTS.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"database.host", "database.user", "database.password", "database.name",
		"redis.enabled", "redis.host", "redis.password", "redis.db",
		"jwt.secret_key",
		"email.host", "email.user", "email.password", "email.from",
		"reset.expose_test_token", "reset.conceal_unknown_email",
		"log.file",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("unable to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the reset workflow cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.SecretKey) == "" {
		return errors.New("jwt.secret_key must be set")
	}
	if c.Reset.MaxAttempts < 1 {
		return fmt.Errorf("reset.max_attempts must be at least 1, got %d", c.Reset.MaxAttempts)
	}
	if c.Reset.TokenTTL <= 0 {
		return fmt.Errorf("reset.token_ttl must be positive, got %s", c.Reset.TokenTTL)
	}
	if c.Reset.RequestLimit < 1 {
		return fmt.Errorf("reset.request_limit must be at least 1, got %d", c.Reset.RequestLimit)
	}
	if c.Reset.RequestWindow <= 0 {
		return fmt.Errorf("reset.request_window must be positive, got %s", c.Reset.RequestWindow)
	}
	if c.Reset.BcryptCost < bcrypt.MinCost || c.Reset.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("reset.bcrypt_cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Reset.BcryptCost)
	}
	if c.Email.SendTimeout <= 0 {
		return fmt.Errorf("email.send_timeout must be positive, got %s", c.Email.SendTimeout)
	}
	c.Reset.FrontendBaseURL = strings.TrimRight(c.Reset.FrontendBaseURL, "/")
	return nil
}
