// Command replay re-applies exported identity lifecycle events to the user store.
//
//	replay --file events.jsonl --rate 100
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"course_backend/internal/app/di"
	useradapters "course_backend/internal/feature/user/adapters"
	userusecase "course_backend/internal/feature/user/usecase"
	"course_backend/internal/platform/cache"
	"course_backend/internal/platform/config"
	infradb "course_backend/internal/platform/db"
	jwtmw "course_backend/internal/platform/jwt"
	"course_backend/internal/platform/logger"
	infraredis "course_backend/internal/platform/redis"
	"course_backend/internal/shared/ratelimiter"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin))
}

// run executes the replay and returns the process exit status:
// 0 on success, 1 when the replay could not run or was aborted, 2 when any event failed.
func run(args []string, stdin io.Reader) int {
	fs := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	file := fs.StringP("file", "f", "-", "events file, one JSON event per line (- for stdin)")
	rate := fs.Int("rate", 100, "events applied per minute (0 disables throttling)")
	timeout := fs.Duration("timeout", 30*time.Minute, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	logger.Setup(os.Stderr, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	in := stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			slog.Error("failed to open events file", "file", *file, "error", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	db, err := infradb.OpenDB(infradb.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, false)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return 1
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Invalidations only reach running servers through a shared store.
	var rdb *redisv9.Client
	if cfg.RedisEnabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, infraredis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		}); err != nil {
			slog.Warn("Redis unavailable; server caches expire by TTL only")
		} else {
			rdb = tmp
			defer rdb.Close()
		}
	}

	memo := cache.NewMemo(di.NewCacheStore(rdb, cfg.CacheTTL), nil)
	users := cache.NewCachingUserRepository(useradapters.NewUserGorm(db), memo)
	idp, err := di.NewIdentityProvider(cfg, jwtmw.NewGenerator(cfg.SessionSecret, time.Hour))
	if err != nil {
		slog.Error("failed to set up identity provider", "error", err)
		return 1
	}

	syncUC := userusecase.NewSyncUsecase(users, idp, cfg.SyncDefaultRedirect, nil)
	uc := userusecase.NewReplayUsecase(syncUC, ratelimiter.NewRateLimiter(*rate, time.Minute))

	rep, err := uc.Replay(ctx, in)
	slog.Info("replay finished", "applied", rep.Applied, "skipped", rep.Skipped, "failed", rep.Failed)
	return exitCode(rep, err)
}

func exitCode(rep userusecase.ReplayReport, err error) int {
	switch {
	case err != nil:
		slog.Error("replay aborted", "error", err)
		return 1
	case rep.Failed > 0:
		return 2
	default:
		return 0
	}
}
