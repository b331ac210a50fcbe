package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskstore/internal/config"
	boltInfra "github.com/fastygo/taskstore/internal/infrastructure/bolt"
	pgInfra "github.com/fastygo/taskstore/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskstore/internal/infrastructure/redis"
	"github.com/fastygo/taskstore/internal/services/lifecycle"
	"github.com/fastygo/taskstore/repository"
	boltRepo "github.com/fastygo/taskstore/repository/bolt"
	pgRepo "github.com/fastygo/taskstore/repository/postgres"
	redisRepo "github.com/fastygo/taskstore/repository/redis"
)

// openStore connects the backend named by STORE_DRIVER and registers its
// shutdown hook.
func openStore(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (repository.TaskRepository, error) {
	switch cfg.Store.Driver {
	case config.DriverBolt:
		db, err := boltInfra.Open(cfg.Store.BoltPath, cfg.Store.TableName)
		if err != nil {
			return nil, err
		}
		manager.RegisterCloser("bolt", db)
		logger.Info("task store opened", zap.String("driver", config.DriverBolt), zap.String("path", cfg.Store.BoltPath))
		return boltRepo.NewTaskRepository(db, cfg.Store.TableName), nil

	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		manager.Register("postgres", func(context.Context) error {
			pgInfra.Close(pool, logger)
			return nil
		})
		if err := pgRepo.EnsureTable(ctx, pool, cfg.Store.TableName); err != nil {
			return nil, err
		}
		logger.Info("task store opened", zap.String("driver", config.DriverPostgres), zap.String("table", cfg.Store.TableName))
		return pgRepo.NewTaskRepository(pool, cfg.Store.TableName), nil

	case config.DriverRedis:
		client, err := redisInfra.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		manager.RegisterCloser("redis", client)
		return redisRepo.NewTaskRepository(client, cfg.Store.TableName), nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}
