package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/MichaelGalo/sushi-train/internal/cli/sushictl"
	"github.com/MichaelGalo/sushi-train/internal/config"
	"github.com/MichaelGalo/sushi-train/internal/lake"
	"github.com/MichaelGalo/sushi-train/internal/observability"
	"github.com/MichaelGalo/sushi-train/internal/pipeline"
	"github.com/MichaelGalo/sushi-train/internal/source"
	s3store "github.com/MichaelGalo/sushi-train/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("sushictl")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stderr)
	ctx := context.Background()

	session, err := lake.Open(ctx, lake.Config{
		Catalog:       cfg.Lake.Catalog,
		Alias:         cfg.Lake.Alias,
		DataPath:      cfg.Lake.DataPath,
		MaxMemoryGB:   cfg.Lake.MaxMemoryGB,
		AttachTimeout: cfg.Lake.AttachTimeout,
	})
	if err != nil {
		logger.Error("failed to open lake session", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = session.Close() }()

	if err := session.ConfigureObjectStore(ctx, lake.Credentials{
		AccessKeyID:     cfg.ObjectStore.AccessKeyID,
		SecretAccessKey: cfg.ObjectStore.SecretAccessKey,
		Endpoint:        cfg.ObjectStore.Endpoint,
		UseSSL:          cfg.ObjectStore.UseSSL,
	}); err != nil {
		logger.Error("failed to configure object store credentials", slog.Any("error", err))
		os.Exit(1)
	}

	store, err := s3store.New(ctx, s3store.Config{
		Endpoint:         cfg.ObjectStore.Endpoint,
		Region:           cfg.ObjectStore.Region,
		Bucket:           cfg.ObjectStore.Bucket,
		AccessKeyID:      cfg.ObjectStore.AccessKeyID,
		SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
		UseSSL:           cfg.ObjectStore.UseSSL,
		Prefix:           cfg.ObjectStore.Prefix,
		AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
	})
	if err != nil {
		logger.Error("failed to initialize object store", slog.Any("error", err))
		os.Exit(1)
	}

	svc := &pipeline.Service{
		Lake:  session,
		Store: store,
		Config: pipeline.Config{
			Bucket:          cfg.ObjectStore.Bucket,
			SourceFolder:    cfg.Pipeline.SourceFolder,
			TargetSchema:    cfg.Pipeline.TargetSchema,
			SyncInterval:    cfg.Pipeline.SyncInterval,
			RefreshInterval: cfg.Pipeline.RefreshInterval,
		},
		Logger: logger,
	}

	fetcher := &source.Fetcher{Store: store, Logger: logger}

	code := sushictl.Run(ctx, os.Args[1:], sushictl.Options{
		Lake:     session,
		Pipeline: svc,
		Store:    store,
		Source:   fetcher,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	})
	os.Exit(code)
}
