package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redisv9 "github.com/redis/go-redis/v9"

	"course_backend/internal/app/di"
	"course_backend/internal/app/router"
	catalogadapters "course_backend/internal/feature/catalog/adapters"
	cataloghandler "course_backend/internal/feature/catalog/transport/handler"
	catalogusecase "course_backend/internal/feature/catalog/usecase"
	useradapters "course_backend/internal/feature/user/adapters"
	userhandler "course_backend/internal/feature/user/transport/handler"
	userusecase "course_backend/internal/feature/user/usecase"
	"course_backend/internal/platform/cache"
	"course_backend/internal/platform/config"
	infradb "course_backend/internal/platform/db"
	healthhandler "course_backend/internal/platform/http/handler"
	"course_backend/internal/platform/identity"
	jwtmw "course_backend/internal/platform/jwt"
	"course_backend/internal/platform/logger"
	"course_backend/internal/platform/metrics"
	infraredis "course_backend/internal/platform/redis"
)

const (
	sessionTokenTTL = time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Setup(os.Stdout, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	models := append(useradapters.Models(), catalogadapters.Models()...)
	db, err := infradb.OpenDB(infradb.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, cfg.RunMigrations, models...)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to get sql.DB", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()
	checks := []healthhandler.Check{{Name: "database", Ping: sqlDB.PingContext}}

	// Redis
	var rdb *redisv9.Client
	if cfg.RedisEnabled() {
		tmp, err := infraredis.NewRedisClient(ctx, infraredis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			slog.Warn("Redis unavailable; using the in-process cache")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
			checks = append(checks, healthhandler.Check{Name: "redis", Ping: func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}})
		}
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// Repository, wrapped with the tag-invalidated memo
	memo := cache.NewMemo(di.NewCacheStore(rdb, cfg.CacheTTL), collector)
	userRepo := cache.NewCachingUserRepository(useradapters.NewUserGorm(db), memo)
	catalogRepo := cache.NewCachingCatalogRepository(catalogadapters.NewCatalogGorm(db), memo)

	// Identity
	idp, err := di.NewIdentityProvider(cfg, jwtmw.NewGenerator(cfg.SessionSecret, sessionTokenTTL))
	if err != nil {
		slog.Error("failed to set up identity provider", "error", err)
		os.Exit(1)
	}
	verifier, err := identity.NewWebhookVerifier(cfg.IdentityWebhookSecret)
	if err != nil {
		slog.Error("invalid webhook secret", "error", err)
		os.Exit(1)
	}

	// Usecase
	syncUC := userusecase.NewSyncUsecase(userRepo, idp, cfg.SyncDefaultRedirect, collector)
	sessionUC := userusecase.NewSessionUsecase(idp, userRepo)
	catalogUC := catalogusecase.NewCatalogUsecase(catalogRepo, userRepo)

	// Handler
	userH := userhandler.NewUserHandler(sessionUC, syncUC, verifier, di.NewDeliveryLog(rdb), collector)
	catalogH := cataloghandler.NewCatalogHandler(catalogUC)

	r := router.NewRouter(router.Deps{
		SessionSecret: cfg.SessionSecret,
		Users:         userH,
		Catalog:       catalogH,
		Metrics:       collector,
		Gatherer:      reg,
		HealthChecks:  checks,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
