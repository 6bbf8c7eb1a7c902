package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/auth-workflow/configs"
	"github.com/avatarctic/auth-workflow/internal/application/services"
	"github.com/avatarctic/auth-workflow/internal/core/ports"
	"github.com/avatarctic/auth-workflow/internal/infrastructure/db"
	"github.com/avatarctic/auth-workflow/internal/infrastructure/email"
	"github.com/avatarctic/auth-workflow/internal/infrastructure/health"
	"github.com/avatarctic/auth-workflow/internal/infrastructure/httpserver"
	"github.com/avatarctic/auth-workflow/internal/infrastructure/redis"
	"github.com/avatarctic/auth-workflow/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := newLogger(&cfg.Log)
	logger.Info("Starting auth workflow service...")

	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	if err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations:", err)
	}

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database)}

	var userRepo ports.UserRepository = repositories.NewUserRepository(database, logger)
	tokenRepo := repositories.NewTokenDBRepository(database, logger)

	// Cache-aside for user lookups by id; the JWT middleware hits this on every request
	if cfg.Cache.Enabled {
		redisClient, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()

		logger.Info("Connected to Redis successfully")

		redisCache := redis.NewRedisCache(redisClient, cfg.Cache.KeyPrefix)
		userRepo = repositories.NewCachingUserRepository(userRepo, redisCache, cfg.Cache.UserTTL)
		hcSlice = append(hcSlice, health.NewRedisHealthChecker(redisClient))
	}

	emailService, err := email.NewEmailService(&cfg.Email, &cfg.JWT, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service:", err)
	}

	userService := services.NewUserService(userRepo, logger)
	tokenService := services.NewTokenService(tokenRepo, userService, &cfg.JWT, logger)
	authService := services.NewAuthService(userService, tokenService, tokenRepo, database, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go tokenService.StartCleanup(ctx, cfg.Cleanup.Interval)

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Environment:    cfg.Server.Environment,
	}

	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		AuthService:    authService,
		UserService:    userService,
		TokenService:   tokenService,
		EmailService:   emailService,
		HealthCheckers: hcSlice,
	})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown: ", err)
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
