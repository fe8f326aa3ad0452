package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/andreyxaxa/Candidate-Verifier/config"
	kafkactrl "github.com/andreyxaxa/Candidate-Verifier/internal/controller/kafka"
	"github.com/andreyxaxa/Candidate-Verifier/internal/controller/restapi"
	"github.com/andreyxaxa/Candidate-Verifier/internal/controller/worker/outbox"
	"github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure"
	infrakafka "github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure/processor"
	"github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure/ratelimit"
	"github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure/sheet"
	"github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure/sms"
	"github.com/andreyxaxa/Candidate-Verifier/internal/repo/persistent"
	"github.com/andreyxaxa/Candidate-Verifier/internal/usecase/candidate"
	"github.com/andreyxaxa/Candidate-Verifier/internal/usecase/notification"
	outboxuc "github.com/andreyxaxa/Candidate-Verifier/internal/usecase/outbox"
	"github.com/andreyxaxa/Candidate-Verifier/internal/usecase/preview"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/httpserver"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/kafka/consumer"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/kafka/producer"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/postgres"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/redisclient"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/s3client"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/snsclient"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)
	defer func() { _ = l.Sync() }()

	// Repository

	// s3
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket,
		s3client.Region(cfg.S3.Region),
		s3client.CreateBucket(cfg.S3.CreateBucket),
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}

	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	candidateRepo := persistent.NewCandidateRepo(pg)
	photoMetaRepo := persistent.NewPhotoMetadataRepo(pg)
	outboxRepo := persistent.NewCandidateOutboxRepo(pg)
	photoRepo := persistent.NewPhotoRepo(s3c)

	// Rate limiter (optional)
	var limiter infrastructure.RateLimiter
	if cfg.Redis.URL != "" {
		rc, err := redisclient.New(ctx, cfg.Redis.URL)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - redisclient.New: %w", err))
		}
		defer rc.Close()

		limiter = ratelimit.NewRedisLimiter(rc.Client, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	} else {
		l.Warn("app - Run - REDIS_URL is empty, candidate endpoints are not rate limited")
	}

	// SMS
	var smsSender infrastructure.SMSSender = sms.NewLogSender(l)
	if cfg.SMS.Enabled {
		opts := []snsclient.Option{snsclient.Endpoint(cfg.SMS.Endpoint)}
		if cfg.SMS.AccessKey != "" {
			opts = append(opts, snsclient.StaticCredentials(cfg.SMS.AccessKey, cfg.SMS.SecretKey))
		}

		snsc, err := snsclient.New(ctx, cfg.SMS.Region, opts...)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - snsclient.New: %w", err))
		}

		smsSender = sms.NewSNSSender(snsc.Client, cfg.SMS.SenderID, cfg.SMS.DefaultCountryCode)
	}

	// Use-Case

	// candidate use-case
	candidateUseCase := candidate.New(
		candidateRepo,
		photoMetaRepo,
		photoRepo,
		outboxRepo,
		pg,
		sheet.New(),
		cfg.Frontend.BaseURL,
		l,
	)

	// outbox use-case
	outboxUseCase := outboxuc.New(outboxRepo, pg, l)

	// thumbnails and notifications, driven by Kafka
	previewUseCase := preview.New(photoRepo, photoMetaRepo, processor.New(), cfg.KafkaController.CPUTimeout)
	notificationUseCase := notification.New(smsSender, l)

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}

	// Outbox Relay Worker
	outboxRelayWorker := outbox.New(
		outboxUseCase,
		infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.Topic),
		l,
		cfg.OutboxRelay.PollInterval,
		cfg.OutboxRelay.CleanupInterval,
		cfg.OutboxRelay.MarkFailedInterval,
		cfg.OutboxRelay.ProcessBatchTimeout,
		cfg.OutboxRelay.BatchSize,
		cfg.OutboxRelay.MaxRetries,
	)

	// Kafka Consumer
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
	}

	// Kafka as Controller
	kafkaController := kafkactrl.New(
		previewUseCase,
		notificationUseCase,
		infrakafka.NewEventConsumer(kafkaConsumer),
		l,
		cfg.KafkaController.CommitTimeout,
		cfg.KafkaController.ProcessTimeout,
		cfg.KafkaController.RetryAttempts,
		cfg.KafkaController.RetryBackoff,
		runtime.NumCPU(),
	)

	// HTTP Server
	httpServer := httpserver.New(l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.BodyLimit(cfg.HTTP.BodyLimit),
	)
	restapi.NewRouter(httpServer.App, cfg, candidateUseCase, limiter, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	err = kafkaController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelayWorker.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
	}

	kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
	defer kcShutdownCancel()
	err = kafkaController.Shutdown(kcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
	}
}
