package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	fiberRecover "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"book-discovery-recommendation-service/internal/config"
	"book-discovery-recommendation-service/internal/database"
	"book-discovery-recommendation-service/internal/handler"
	"book-discovery-recommendation-service/internal/middleware"
	"book-discovery-recommendation-service/internal/recommend"
	"book-discovery-recommendation-service/internal/repository"
	"book-discovery-recommendation-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Structured logging
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgres(startCtx, cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis is optional: without it caching and rate limiting are disabled
	var rdb *redis.Client
	if client, err := database.NewRedis(startCtx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable, running without cache", "error", err)
	} else {
		rdb = client
	}

	// Initialize layers
	bookRepo := repository.NewBookRepository(db)
	userRepo := repository.NewUserRepository(db)
	recRepo := repository.NewRecommendationRepository(db)

	catalogSvc := service.NewCatalogService(bookRepo, rdb, cfg.Cache.BookTTL)
	userSvc := service.NewUserService(userRepo, rdb, cfg.Cache.PreferenceTTL)
	ranker := recommend.NewRanker(bookRepo, userSvc, recRepo,
		recommend.WithCandidateLimit(cfg.CandidateLimit),
		recommend.WithLogger(log),
	)
	recSvc := service.NewRecommendationService(ranker, recRepo, rdb, cfg.Cache.RecommendationTTL)

	if cfg.CatalogSeed != "" {
		result, err := catalogSvc.ImportCatalogFile(startCtx, cfg.CatalogSeed)
		if err != nil {
			slog.Error("failed to seed catalog", "path", cfg.CatalogSeed, "error", err)
			os.Exit(1)
		}
		slog.Info("catalog seeded", "path", cfg.CatalogSeed, "books", result.Books)
	}

	app := handler.NewApp()

	// Middleware
	app.Use(fiberRecover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.Metrics())
	app.Use(middleware.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window).Handler())
	app.Use(middleware.AuthMiddleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger docs
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger.yaml not found, swagger UI will be unavailable", "error", err)
	} else {
		handler.RegisterSwagger(app, swaggerYAML)
	}

	handler.Register(app, handler.Handlers{
		Books:           handler.NewBookHandler(catalogSvc),
		Users:           handler.NewUserHandler(userSvc),
		Recommendations: handler.NewRecommendationHandler(recSvc),
	})

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		slog.Info("starting book discovery service", "addr", addr)
		if err := app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down book discovery service...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("error shutting down HTTP server", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("error closing Redis connection", "error", err)
		}
	}
	slog.Info("shutdown complete")
}
