package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/common/validation"
	"scheme-assist/internal/models"
)

// RedisProvider reads the catalog document stored as a JSON string under a
// single key.
type RedisProvider struct {
	client redis.Cmdable
	key    string
	schema *validation.Schema
}

func NewRedisProvider(client redis.Cmdable, key string, schema *validation.Schema) *RedisProvider {
	if schema == nil {
		schema = defaultSchema
	}
	return &RedisProvider{client: client, key: key, schema: schema}
}

func (p *RedisProvider) Name() string { return "redis" }

func (p *RedisProvider) Load(ctx context.Context) (*models.Catalog, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewCatalogUnavailableError(p.Name(), fmt.Errorf("key %s not found", p.key))
	}
	if err != nil {
		return nil, apperrors.NewCatalogUnavailableError(p.Name(), err)
	}

	return Decode(p.Name(), data, p.schema)
}

// RedisStore writes the catalog document under a single key without expiry.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Save(ctx context.Context, catalog *models.Catalog) error {
	if err := Check(s.Name(), catalog); err != nil {
		return err
	}

	data, err := json.Marshal(normalize(catalog))
	if err != nil {
		return apperrors.NewCatalogWriteFailedError(s.Name(), err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return apperrors.NewCatalogWriteFailedError(s.Name(), err)
	}
	return nil
}
