package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	appconfig "github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/blob"
	"github.com/Ramsey-B/fern/internal/handlers"
	agentrepo "github.com/Ramsey-B/fern/internal/repositories/agent"
	submissionrepo "github.com/Ramsey-B/fern/internal/repositories/submission"
	"github.com/Ramsey-B/fern/pkg/assembler"
	"github.com/Ramsey-B/fern/pkg/bundle"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/ingest"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/mailer"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/pdfgen"
	"github.com/Ramsey-B/fern/pkg/reconcile"
	"github.com/Ramsey-B/fern/pkg/resolver"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

func main() {
	cfg, err := appconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	if cfg.TracingEnabled {
		shutdown, err := tracing.Init(ctx, tracing.Config{
			ServiceName: cfg.AppName,
			Endpoint:    cfg.TracingEndpoint,
			Protocol:    cfg.TracingProtocol,
			Insecure:    cfg.TracingInsecure,
			Timeout:     cfg.TracingTimeout,
		})
		if err != nil {
			logger.WithError(err).Error("failed to initialize tracing")
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("failed to initialize blob store")
		os.Exit(1)
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaBrokers[0] != "" {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
	}
	emitter := events.NewEmitter(producer, logger)

	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)

	agents := agentrepo.NewRepository(store, logger)
	submissions := submissionrepo.NewRepository(store, logger)
	res := resolver.New(agents, logger)
	ingestor := ingest.New(submissions, agents, res, store, emitter, mail, logger)
	sweeper := reconcile.New(submissions, agents, res, emitter, logger)
	asm := assembler.New(agents, submissions, store, pdfgen.NewRenderer(), emitter, logger)
	exporter := bundle.New(store, logger)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	checker := health.NewChecker(store, cfg.Version)
	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	handlers.NewAgentHandler(agents, store, res, exporter, logger).RegisterRoutes(api)
	handlers.NewSubmissionHandler(ingestor, submissions, store, logger).RegisterRoutes(api)
	handlers.NewAdminHandler(sweeper, asm).RegisterRoutes(api)

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	go func() {
		checker.SetReady(true)
		logger.WithField("port", cfg.Port).Info("starting server")
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	checker.SetReady(false)
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("forced shutdown")
	}
}

func newLogger(cfg appconfig.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func newStore(ctx context.Context, cfg appconfig.Config, logger ectologger.Logger) (blob.Store, error) {
	switch cfg.StorageBackend {
	case "s3":
		return blob.NewRemoteStore(ctx, blob.RemoteConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		}, logger)
	case "local":
		return blob.NewLocalStore(cfg.StorageRoot, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (use 'local' or 's3')", cfg.StorageBackend)
	}
}
