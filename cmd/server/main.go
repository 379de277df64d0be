package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstagram/internal/config"
	"bookstagram/internal/db"
	"bookstagram/internal/httpapi"
	"bookstagram/internal/service"
	"bookstagram/internal/storage"
	"bookstagram/internal/store"
	"bookstagram/internal/sweeper"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := initLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	blobs, err := newBlobStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}

	catalog := store.NewPGStore(pool)
	svc := service.New(service.Options{
		Catalog:         catalog,
		Blobs:           blobs,
		Logger:          logger,
		DefaultCoverURL: cfg.DefaultCoverURL,
	})

	if cfg.SweepEnabled {
		runner := sweeper.NewRunner(sweeper.Options{
			Catalog: catalog,
			Blobs:   blobs,
			Logger:  logger,
			Grace:   cfg.SweepGrace,
			Delete:  cfg.SweepDelete,
			Workers: cfg.SweepWorkers,
		})
		worker := sweeper.NewWorker(runner, sweeper.WorkerConfig{
			StartupDelay: cfg.SweepDelay,
			Interval:     cfg.SweepInterval,
		}, logger)
		go worker.Run(ctx)
	}

	api := httpapi.New(cfg, svc, logger)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.NewEcho(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "storage", cfg.StorageBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Trip the signal context so main unwinds through the
			// usual shutdown path and its deferred cleanup.
			logger.Error("serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
		os.Exit(1)
	}
}

func initLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)
	return logger
}

func newBlobStorage(ctx context.Context, cfg config.Config) (storage.BlobStorage, error) {
	if cfg.StorageBackend == config.BackendLocal {
		return storage.NewLocalBlobStore(cfg.StorageRoot)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			// Custom endpoints are MinIO-style deployments, which need
			// path addressing.
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return storage.NewS3BlobStore(storage.S3Options{
		Client: client,
		Bucket: cfg.S3Bucket,
		Prefix: cfg.S3Prefix,
	}), nil
}
