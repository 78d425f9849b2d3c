package main

import (
	"context"
	"fmt"

	"doccontrol/internal/core"
	"doccontrol/internal/db"
	"doccontrol/internal/storage"
	"doccontrol/internal/store"
	"doccontrol/internal/store/memory"
	"doccontrol/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

func loadConfig(prefix string) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.StoreBackend == "postgres" && c.DatabaseURL == "" {
		return nil, fmt.Errorf("set %s_DATABASE_URL", prefix)
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 60
	}

	return c, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}

func newLogger(cfg *types.Config) *logrus.Logger {
	logger := logrus.New()
	if cfg.IsDevelopment() {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("invalid log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// openStore returns the configured register store and a function releasing
// its resources.
func openStore(ctx context.Context, cfg *types.Config, logger *logrus.Logger) (core.Store, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("using in-memory store, data is lost on exit")
		return memory.NewStore(), func() {}, nil
	case "postgres":
		pool, err := connect(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return store.New(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func connect(ctx context.Context, cfg *types.Config, logger *logrus.Logger) (*pgxpool.Pool, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool, cfg.DatabaseSchema, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return pool, nil
}

func openBlobs(ctx context.Context, cfg *types.Config) (core.Blobs, error) {
	switch cfg.StorageBackend {
	case "local":
		return storage.NewLocalStorage(cfg.UploadDir)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required for the s3 storage backend")
		}
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Storage(s3.NewFromConfig(awsConfig), cfg.S3Bucket, cfg.S3Prefix), nil
	case "supabase":
		if cfg.SupabaseProjectID == "" || cfg.SupabaseAPIKey == "" {
			return nil, fmt.Errorf("SUPABASE_PROJECT_ID and SUPABASE_API_KEY are required for the supabase storage backend")
		}
		return storage.NewSupabaseStorage(cfg.SupabaseProjectID, cfg.SupabaseAPIKey, cfg.SupabaseBucket), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// openService wires the register over the configured backends.
func openService(ctx context.Context, cfg *types.Config, logger *logrus.Logger) (*core.Service, func(), error) {
	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	blobs, err := openBlobs(ctx, cfg)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	return core.New(st, blobs, logger), closeStore, nil
}
