// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"application-gateway/internal/common/config"
	"application-gateway/internal/common/database"
	"application-gateway/internal/common/logger"
	"application-gateway/internal/common/observability"
	"application-gateway/internal/discord"
	"application-gateway/internal/lifecycle"
	"application-gateway/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting application gateway...",
		zap.String("environment", cfg.App.Environment),
		zap.String("storageBackend", cfg.Storage.Backend),
	)

	obs := observability.New("application-gateway")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage backends ---
	ledger, store, cleanup, err := buildStorage(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("storage initialization failed", zap.Error(err))
	}
	defer cleanup()

	// --- Platform collaborators ---
	verifier, err := discord.NewVerifier(cfg.Discord.PublicKey)
	if err != nil {
		zapLog.Fatal("invalid interaction public key", zap.Error(err))
	}
	botClient := discord.NewClient(cfg.Discord, log)
	oauthClient := discord.NewOAuthClient(cfg.OAuth, cfg.Discord.APIBaseURL)

	// --- Lifecycle controller ---
	controller := lifecycle.NewController(
		lifecycle.NewScorer(lifecycle.DefaultAnswerKey(), log),
		ledger,
		store,
		botClient,
		lifecycle.Policy{
			Cooldown:       cfg.Moderation.Cooldown,
			ApproveRoleIDs: cfg.Moderation.ApproveRoleIDs,
		},
		log,
	)

	srv := server.New(cfg.Server, controller, oauthClient, verifier, obs, log)

	if err := srv.Run(ctx); err != nil {
		zapLog.Fatal("http server failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}

// buildStorage wires the ledger and store for the configured backend. The
// returned cleanup closes whatever connections were opened.
func buildStorage(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (lifecycle.CooldownLedger, lifecycle.ApplicationStore, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		var redisClient *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Storage.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis initialization")
		if err != nil {
			return nil, nil, nil, err
		}
		zapLog.Info("Redis connected successfully")

		ledger := lifecycle.NewRedisLedger(redisClient.GetClient())
		return ledger, lifecycle.NewMemoryStore(), func() { redisClient.Close() }, nil

	case "postgres":
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Storage.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "PostgreSQL initialization")
		if err != nil {
			return nil, nil, nil, err
		}
		zapLog.Info("PostgreSQL connected successfully")

		store := lifecycle.NewPostgresStore(pg.GetDB())
		if err := store.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, nil, err
		}
		return lifecycle.NewMemoryLedger(), store, func() { pg.Close() }, nil

	default:
		return lifecycle.NewMemoryLedger(), lifecycle.NewMemoryStore(), func() {}, nil
	}
}
