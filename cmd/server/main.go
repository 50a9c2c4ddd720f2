package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tazhibayda/postpilot-backend/internal/config"
	api "github.com/tazhibayda/postpilot-backend/internal/http"
	"github.com/tazhibayda/postpilot-backend/internal/log"
	"github.com/tazhibayda/postpilot-backend/internal/metrics"
	"github.com/tazhibayda/postpilot-backend/internal/oauth"
	"github.com/tazhibayda/postpilot-backend/internal/payments"
	"github.com/tazhibayda/postpilot-backend/internal/queue"
	"github.com/tazhibayda/postpilot-backend/internal/repo"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		stdlog.Fatal("JWT_SECRET is not set")
	}

	logger, err := log.Init(cfg.Production())
	if err != nil {
		stdlog.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()

	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.EnsureUserIndexes(ctx); err != nil {
		logger.Fatal("user indexes", zap.Error(err))
	}

	var rds *repo.Redis
	if cfg.RedisAddr != "" {
		rds = repo.NewRedis(cfg.RedisAddr)
		if err := rds.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, rate limiting disabled", zap.Error(err))
			rds = nil
		} else {
			defer rds.Close()
		}
	}

	events := queue.NewNoop()
	if cfg.RabbitURL != "" {
		pub, err := queue.NewRabbit(cfg.RabbitURL, cfg.EventExchange)
		if err != nil {
			logger.Warn("rabbit unreachable, events disabled", zap.Error(err))
		} else {
			events = pub
		}
	}
	defer events.Close()

	stateSecret := cfg.OAuthStateSecret
	if stateSecret == "" {
		stateSecret = cfg.JWTSecret
	}
	google := oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret,
		cfg.GoogleCallbackURL, stateSecret)

	checkout := payments.NewStripe(cfg.StripeSecretKey, cfg.FrontendURL)

	h := api.NewHandler(store, google, checkout, events,
		cfg.JWTSecret, cfg.TokenTTLDays, cfg.FrontendURL, cfg.EventExchange,
		cfg.Production())
	r := api.NewRouter(h, rds, cfg.RateLimitPerMin)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	logger.Info("postpilot-backend listening", zap.String("port", cfg.Port))

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
