package app

import (
	"context"
	"database/sql"
	"errors"
	"fruit-api/config"
	"fruit-api/db"
	"fruit-api/handler"
	"fruit-api/logger"
	"fruit-api/repository"
	"fruit-api/router"
	"fruit-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// App is a fully wired instance of the API.
type App struct {
	Config *config.Config
	DB     *sql.DB
	Redis  *redis.Client
	Router http.Handler

	PasswordResets *service.PasswordResetService
	Auth           *service.AuthService
}

// New wires repositories, services and handlers on top of an open database
// and an optional redis client. notifier overrides the SMTP notifier when set.
func New(cfg *config.Config, database *sql.DB, redisClient *redis.Client, notifier service.Notifier) *App {
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewResetTokenRepository(database)

	authService := service.NewAuthService(cfg.JWT, cfg.Reset.BcryptCost)
	userService := service.NewUserService(userRepo, authService)

	if notifier == nil {
		notifier = service.NewMailNotifier(cfg.Email)
	}

	var limiter service.RequestLimiter
	if redisClient != nil {
		limiter = service.NewRedisRequestLimiter(redisClient, cfg.Reset.RequestLimit, cfg.Reset.RequestWindow)
	}

	signer := service.NewResetTokenSigner(cfg.JWT.SecretKey, cfg.Reset.TokenTTL)
	resetService := service.NewPasswordResetService(database, tokenRepo, userRepo, signer, notifier, limiter, cfg.Reset)

	checks := map[string]handler.Pinger{"database": database.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := router.NewRouter(router.Handlers{
		User:     handler.NewUserHandler(userService),
		Password: handler.NewPasswordHandler(resetService, cfg.Reset.ExposeTestToken),
		Health:   handler.NewHealthHandler(checks),
		Auth:     authService,
	}, cfg.CORS.AllowedOrigins)

	return &App{
		Config:         cfg,
		DB:             database,
		Redis:          redisClient,
		Router:         r,
		PasswordResets: resetService,
		Auth:           authService,
	}
}

func Run() {
	logger.Init()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Error loading configuration: %v", err)
	}
	logger.Setup(cfg.Log)
	logger.Log.Info("Configuration loaded successfully")

	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := db.RunMigrations(cfg.Database.MigrationsPath, cfg.Database.DSN()); err != nil {
			logger.Log.Fatalf("Error running migrations: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = db.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Log.Fatalf("Error connecting to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Log.Warn("Redis disabled, password reset requests are not rate limited")
	}

	if cfg.Reset.ExposeTestToken {
		logger.Log.Warn("reset.expose_test_token is on, reset tokens are returned in API responses")
	}

	a := New(cfg, database, redisClient, nil)

	port := cfg.Server.Port
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      a.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
