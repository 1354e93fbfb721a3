package app

import (
	"context"
	"database/sql"

	"textok-auth/internal/config"
	"textok-auth/internal/db"
	"textok-auth/internal/logger"
	"textok-auth/internal/redis"
	"textok-auth/internal/storage"

	_ "github.com/lib/pq"
)

type Infra struct {
	DB      *db.DB
	Redis   *redis.Client
	Storage *storage.S3Storage
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.RunMigration(ctx, sqlDB); err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", nil)

	s3Storage, err := storage.NewS3Storage(ctx, storage.S3Config{
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("object storage ready", nil)

	return &Infra{
		DB:      &db.DB{DB: sqlDB},
		Redis:   redisClient,
		Storage: s3Storage,
	}, nil
}
