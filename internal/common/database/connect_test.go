package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-assist/internal/common/config"
	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/common/logger"
)

func TestRetryWithBackoff(t *testing.T) {
	log := logger.NewTestLogger(t)

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		}, 5, time.Millisecond, log, "op")

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		cause := errors.New("down")
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			return cause
		}, 3, time.Millisecond, log, "op")

		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "op failed after 3 attempts")
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return errors.New("down")
		}, 5, time.Hour, log, "op")

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestConnect(t *testing.T) {
	log := logger.NewTestLogger(t)
	policy := RetryPolicy{Attempts: 1, InitialDelay: time.Millisecond}

	t.Run("file source opens nothing", func(t *testing.T) {
		conns, err := Connect(context.Background(), &config.Config{}, config.CatalogSourceFile, policy, log)
		require.NoError(t, err)
		assert.Nil(t, conns.Postgres)
		assert.Nil(t, conns.Redis)
		assert.Nil(t, conns.Elasticsearch)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{}
		cfg.Database.Redis.Address = mr.Addr()

		conns, err := Connect(context.Background(), cfg, config.CatalogSourceRedis, policy, log)
		require.NoError(t, err)
		defer conns.Close()
		require.NotNil(t, conns.Redis)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := &config.Config{}
		cfg.Database.Redis.Address = addr

		_, err := Connect(context.Background(), cfg, config.CatalogSourceRedis, policy, log)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseConnectionFailed))
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := Connect(context.Background(), &config.Config{}, "s3", policy, log)
		assert.Error(t, err)
	})
}
