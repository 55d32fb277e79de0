package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// RedisConnection is the shared Redis client. It is nil when Redis is not configured.
type RedisConnection struct {
	redis.UniversalClient
}

// Shutdown closes the client.
func (c *RedisConnection) Shutdown() error {
	if c == nil {
		return nil
	}

	return c.Close()
}

// PostgresConnection is the shared pool. It is nil when no database is configured.
type PostgresConnection struct {
	*pgxpool.Pool
}

// Shutdown closes the pool.
func (c *PostgresConnection) Shutdown() error {
	if c == nil {
		return nil
	}

	c.Close()

	return nil
}

// LoggerPackage provides the application logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis connection.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisConnection, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.RedisAddr == "" {
			return nil, nil
		}

		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{opts.RedisAddr},
		})

		return &RedisConnection{UniversalClient: client}, nil
	})
}

// PostgresPackage provides the Postgres pool and applies the schema.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*PostgresConnection, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.DatabaseURL == "" {
			return nil, nil
		}

		pool, err := pgxpool.New(context.Background(), opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		return &PostgresConnection{Pool: pool}, nil
	})
}
