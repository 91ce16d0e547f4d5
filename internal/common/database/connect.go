// internal/common/database/connect.go
package database

import (
	"context"
	"fmt"
	"time"

	"scheme-assist/internal/common/config"
	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/common/logger"
)

// Connections holds the backend clients opened for one catalog source.
// Unused backends stay nil.
type Connections struct {
	Postgres      *PostgresClient
	Redis         *RedisClient
	Elasticsearch *ElasticsearchClient
}

// Close releases every open client.
func (c *Connections) Close() {
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// RetryPolicy controls how often Connect pings a backend before giving up.
type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 10, InitialDelay: 2 * time.Second}

// Connect opens and pings the backend named by source. The file source needs
// no connection and returns an empty set.
func Connect(ctx context.Context, cfg *config.Config, source string, policy RetryPolicy, log logger.Logger) (*Connections, error) {
	conns := &Connections{}

	switch source {
	case config.CatalogSourceFile:
		return conns, nil

	case config.CatalogSourcePostgres:
		pg, err := NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		if err := RetryWithBackoff(ctx, func() error { return pg.Ping(ctx) },
			policy.Attempts, policy.InitialDelay, log, "PostgreSQL connection"); err != nil {
			_ = pg.Close()
			return nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		conns.Postgres = pg

	case config.CatalogSourceRedis:
		rdb, err := NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, err
		}
		if err := RetryWithBackoff(ctx, func() error { return rdb.Ping(ctx) },
			policy.Attempts, policy.InitialDelay, log, "Redis connection"); err != nil {
			_ = rdb.Close()
			return nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		conns.Redis = rdb

	case config.CatalogSourceElasticsearch:
		es, err := NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		if err := RetryWithBackoff(ctx, func() error { return es.Ping(ctx) },
			policy.Attempts, policy.InitialDelay, log, "Elasticsearch connection"); err != nil {
			return nil, apperrors.NewElasticsearchConnectionFailedError(err)
		}
		conns.Elasticsearch = es

	default:
		return nil, fmt.Errorf("unknown catalog source %q", source)
	}

	log.Info("catalog backend connected", map[string]interface{}{"source": source})
	return conns, nil
}

// RetryWithBackoff runs operation up to maxRetries times, doubling the delay
// after each failure. It stops early when ctx is done.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s aborted: %w", operationName, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
