package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-mobile-verification/internal/application/validity"
	"github.com/go-mobile-verification/internal/application/verification"
	"github.com/go-mobile-verification/internal/config"
	"github.com/go-mobile-verification/internal/infrastructure/aliyun"
	"github.com/go-mobile-verification/internal/infrastructure/breaker"
	"github.com/go-mobile-verification/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-mobile-verification/internal/infrastructure/jwt"
	"github.com/go-mobile-verification/internal/infrastructure/kafka"
	redisinfra "github.com/go-mobile-verification/internal/infrastructure/redis"
	"github.com/go-mobile-verification/internal/infrastructure/sns"
	"github.com/go-mobile-verification/internal/pkg/digest"
	"github.com/go-mobile-verification/internal/pkg/logger"
	transporthttp "github.com/go-mobile-verification/internal/transport/http"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := newKeyValueStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("init store backend", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeKV()

	keyDigest, err := digest.ByName(cfg.VerificationKeyDigest)
	if err != nil {
		zl.Fatal("init key digest", zap.Error(err))
	}
	store, err := validity.NewStore(kv,
		validity.WithTTL(cfg.VerificationTTL),
		validity.WithKeyPrefix(cfg.VerificationKeyPrefix),
		validity.WithDigest(keyDigest),
	)
	if err != nil {
		zl.Fatal("init validity store", zap.Error(err))
	}

	notifier, closeNotifier, err := newNotifier(ctx, cfg)
	if err != nil {
		zl.Fatal("init notifier", zap.String("notifier", cfg.Notifier), zap.Error(err))
	}
	defer closeNotifier()
	deps := &transporthttp.Deps{Logger: zl.Named("http")}
	if cfg.BreakerEnabled {
		b := breaker.NewNotifier(notifier, breaker.Settings{
			Name:        cfg.Notifier,
			MaxFailures: cfg.BreakerMaxFailures,
			Timeout:     cfg.BreakerTimeout,
		}, zl)
		notifier = b
		deps.NotifierBreaker = b
	}

	svc, err := verification.NewService(verification.Config{
		Store:           store,
		Notifier:        notifier,
		Logger:          zl.Named("verification"),
		MessageTemplate: cfg.VerificationMessageTemplate,
	})
	if err != nil {
		zl.Fatal("init verification service", zap.Error(err))
	}

	deps.Verification = svc
	// JWT provider (optional; template routes stay unmounted without it).
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.TokenVerifier = p
	} else {
		zl.Warn("JWT provider not available", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("server starting",
			zap.String("port", cfg.AppPort),
			zap.String("env", cfg.AppEnv),
			zap.String("store", cfg.StoreBackend),
			zap.String("notifier", cfg.Notifier),
			zap.Duration("ttl", store.TTL()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
		return
	}
	zl.Info("server stopped")
}

func newKeyValueStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (validity.KeyValueStore, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		client, err := redisinfra.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return redisinfra.NewKV(client), func() { _ = client.Close() }, nil
	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTable, zl)
		return dynamo.NewKV(client, cfg.DynamoTable), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newNotifier(ctx context.Context, cfg *config.Config) (verification.Notifier, func(), error) {
	noop := func() {}
	switch cfg.Notifier {
	case "sns":
		s, err := sns.NewSender(ctx, cfg)
		return s, noop, err
	case "aliyun":
		s, err := aliyun.NewSender(cfg)
		return s, noop, err
	case "kafka":
		p := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		return p, closer(p), nil
	default:
		return nil, noop, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}

func closer(c io.Closer) func() {
	return func() { _ = c.Close() }
}
