package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"secondchance/docs" // swagger docs
	"secondchance/internal/auth"
	"secondchance/internal/cache"
	"secondchance/internal/config"
	"secondchance/internal/db"
	"secondchance/internal/handler"
	"secondchance/internal/logging"
	"secondchance/internal/repository"
	"secondchance/internal/router"
	"secondchance/internal/service"
	"secondchance/internal/storage"
)

// @title SecondChance API
// @version 1.0
// @description Marketplace for second-hand items with JWT authentication.
// @host localhost:3060
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token, optionally prefixed with "Bearer ".
func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn("JWT_SECRET is not set, using the insecure default")
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		fatal(log, "database init", err)
	}

	mongoClient, mongoDB, err := db.NewMongo(startCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		fatal(log, "mongo init", err)
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping users table and items collection")
		if err := db.DropUsers(gormDB); err != nil {
			log.Warn("failed to drop users table (may not exist)", "error", err)
		}
		if err := db.DropItems(startCtx, mongoDB); err != nil {
			log.Warn("failed to drop items collection", "error", err)
		}
	}

	if err := db.MigrateUsers(gormDB); err != nil {
		fatal(log, "auto-migrate", err)
	}
	if err := db.EnsureItemIndexes(startCtx, mongoDB); err != nil {
		fatal(log, "item indexes", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(startCtx); err != nil {
		log.Warn("redis unreachable, item cache disabled until it recovers", "addr", cfg.RedisAddr, "error", err)
	}

	files, err := storage.NewMinioStore(startCtx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		fatal(log, "minio init", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	itemRepo := repository.NewItemRepository(mongoDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	// Initialize services
	authService := service.NewAuthService(userRepo, hasher, jwtService, service.TokenTTLs{
		Register: cfg.RegisterTokenTTL,
		Login:    cfg.TokenTTL,
	}, log)
	itemService := service.NewItemService(itemRepo, files, cacheClient, log)

	e := echo.New()
	e.HideBanner = true
	router.Register(
		e,
		cfg,
		log,
		jwtService,
		handler.NewAuthHandler(authService),
		handler.NewItemHandler(itemService, cfg.MaxUploadBytes),
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}
	log.Info("swagger documentation available", "url", swaggerURL(cfg))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	if err := runServer(e, ":"+cfg.ServerPort, quit, log); err != nil {
		log.Error("server start", "error", err)
		exitCode = 1
	}

	_ = cacheClient.Close()
	_ = mongoClient.Disconnect(context.Background())
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// runServer serves until stop fires or the listener fails, then shuts e down
// within 10s. It returns the listener error, if any.
func runServer(e *echo.Echo, addr string, stop <-chan os.Signal, log *slog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var err error
	select {
	case err = <-serveErr:
	case <-stop:
		log.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := e.Shutdown(ctx); shutdownErr != nil {
		log.Error("server shutdown", "error", shutdownErr)
	}
	return err
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
