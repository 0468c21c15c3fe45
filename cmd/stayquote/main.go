package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"stayquote/internal/app/bootstrap"
	"stayquote/internal/app/middleware"
	appoutbox "stayquote/internal/app/outbox"
	"stayquote/internal/app/policies"
	"stayquote/internal/app/services/auth"
	"stayquote/internal/app/uow"
	"stayquote/internal/infra/broker/kafka"
	rediscache "stayquote/internal/infra/cache/redis"
	"stayquote/internal/infra/config"
	mongostore "stayquote/internal/infra/db/mongo"
	ginserver "stayquote/internal/infra/http/gin"
	"stayquote/internal/infra/inbox"
	"stayquote/internal/infra/obs"
	infraoutbox "stayquote/internal/infra/outbox"
	"stayquote/internal/infra/security"
	"stayquote/internal/infra/storage/memory"
	"stayquote/internal/infra/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, obs.LogOptions{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("stayquote stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("stayquote stopped")
}

type infrastructure struct {
	uow         uow.UoWFactory
	outbox      appoutbox.Outbox
	idempotency middleware.IdempotencyStore
	cache       policies.AvailabilityCache
	checks      map[string]obs.Check
	background  []func(ctx context.Context) error
	closers     []func(ctx context.Context) error
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	infra, err := buildInfrastructure(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, closeFn := range infra.closers {
			if err := closeFn(closeCtx); err != nil {
				logger.Warn("shutdown step failed", "error", err)
			}
		}
	}()

	buses := bootstrap.Build(bootstrap.Deps{
		UoW:          infra.uow,
		Outbox:       infra.outbox,
		Idempotency:  infra.idempotency,
		Cache:        infra.cache,
		Validator:    validation.New(),
		Clock:        policies.SystemClock{},
		IDs:          uuid.NewString,
		WindowMonths: cfg.AvailabilityMonths,
		Logger:       logger,
	})

	if cfg.CatalogFixtures != "" {
		if err := loadCatalogFixtures(ctx, cfg.CatalogFixtures, buses.Commands, logger); err != nil {
			logger.Warn("catalog fixtures load failed", "error", err, "path", cfg.CatalogFixtures)
		}
	}

	authService := &auth.Service{
		Passwords:      security.BcryptHasher{},
		Tokens:         security.RandomTokenGenerator{},
		AdminTokenHash: cfg.AdminTokenHash,
		Logger:         logger,
	}
	if cfg.AdminTokenHash == "" {
		logger.Warn("ADMIN_TOKEN_HASH not set; admin endpoints will reject every request")
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: infra.checks}, ginserver.Handlers{
		Public:    ginserver.PublicHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Admin:     ginserver.AdminHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		AdminAuth: ginserver.AdminAuth{Service: authService, Logger: logger}.Handle,
	})

	var wg sync.WaitGroup
	for _, task := range infra.background {
		wg.Add(1)
		go func(task func(context.Context) error) {
			defer wg.Done()
			if err := task(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background task failed", "error", err)
			}
		}(task)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode, "kafka", cfg.KafkaEnabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	wg.Wait()
	return nil
}

func buildInfrastructure(ctx context.Context, cfg config.Config, logger *slog.Logger) (*infrastructure, error) {
	infra := &infrastructure{checks: map[string]obs.Check{}}

	if cfg.RedisAddr != "" {
		cli := rediscache.NewClient(cfg.RedisAddr)
		cache := rediscache.NewAvailabilityCache(cli, cfg.AvailabilityCacheTTL)
		infra.cache = cache
		infra.checks["redis"] = cache.Ping
		infra.closers = append(infra.closers, func(context.Context) error { return cli.Close() })
	} else {
		infra.cache = memory.NewAvailabilityCache(cfg.AvailabilityCacheTTL)
	}

	var producer *kafka.Producer
	if cfg.KafkaEnabled() {
		var err error
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, nil, kafka.ProducerOptions{Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		infra.closers = append(infra.closers, func(context.Context) error { return producer.Close() })
	}

	var deduper kafka.Deduper
	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		infra.closers = append(infra.closers, client.Close)
		infra.checks["mongo"] = client.Ping
		infra.uow = mongostore.NewFactory(ctx, client.DB)
		infra.idempotency = mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		store := infraoutbox.NewStore(ctx, client.DB)
		infra.outbox = store
		deduper = inbox.NewStore(ctx, client.DB, consumerGroup(cfg))
		if producer != nil && cfg.OutboxWorker {
			worker := &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
				MaxAttempts: 20,
				Logger:      logger,
			}
			infra.background = append(infra.background, worker.Run)
		}
	default:
		infra.uow = memory.NewFactory(
			memory.NewBlockedRangeRepository(),
			memory.NewStayRuleRepository(),
			memory.NewSeasonRepository(),
			memory.NewInquiryRepository(),
		)
		infra.idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		box := memory.NewOutbox(logEvents(logger))
		if producer != nil {
			box.Subscribe(relayEvents(producer, cfg.KafkaTopicPrefix, logger))
		}
		infra.outbox = box
	}

	if cfg.KafkaEnabled() {
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, consumerGroup(cfg), nil, kafka.CacheInvalidator{
			Cache:  infra.cache,
			Inbox:  deduper,
			Logger: logger,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		topics := []string{infraoutbox.Topic(cfg.KafkaTopicPrefix, "catalog")}
		infra.background = append(infra.background, func(ctx context.Context) error { return consumer.Run(ctx, topics) })
		infra.closers = append(infra.closers, func(context.Context) error { return consumer.Close() })
	}
	return infra, nil
}

// consumerGroup is unique per instance: every instance must see every catalog change
// to drop its own cached availability.
func consumerGroup(cfg config.Config) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = uuid.NewString()
	}
	return cfg.KafkaGroupID + "-" + host
}

func logEvents(logger *slog.Logger) memory.Subscriber {
	return func(ctx context.Context, rec appoutbox.EventRecord) error {
		logger.InfoContext(ctx, "domain event", "name", rec.Name, "aggregate", rec.Aggregate, "id", rec.ID)
		return nil
	}
}

// relayEvents publishes memory-outbox records straight to Kafka as CloudEvents. The command
// has already committed, so failures are logged and dropped.
func relayEvents(producer *kafka.Producer, prefix string, logger *slog.Logger) memory.Subscriber {
	return func(ctx context.Context, rec appoutbox.EventRecord) error {
		doc := &infraoutbox.EventDocument{
			ID:         rec.ID,
			Name:       rec.Name,
			Payload:    rec.Payload,
			OccurredAt: rec.OccurredAt,
			Aggregate:  rec.Aggregate,
			Headers:    rec.Headers,
		}
		payload, headers, err := infraoutbox.CloudEvent(doc, "")
		if err == nil {
			err = producer.Publish(ctx, infraoutbox.Topic(prefix, rec.Name), rec.Aggregate, payload, headers)
		}
		if err != nil {
			logger.WarnContext(ctx, "event relay failed", "id", rec.ID, "name", rec.Name, "error", err)
		}
		return nil
	}
}
