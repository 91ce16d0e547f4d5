package catalog

import (
	"database/sql"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"

	"scheme-assist/internal/common/config"
	"scheme-assist/internal/common/database"
)

// Deps holds the backend clients a provider or store may need. Only the
// client for the selected source has to be set.
type Deps struct {
	Postgres      *sql.DB
	Redis         redis.Cmdable
	Elasticsearch esapi.Transport
}

// DepsFrom exposes the open clients of conns. Nil clients stay unset so the
// interface fields compare equal to nil.
func DepsFrom(conns *database.Connections) Deps {
	var deps Deps
	if conns.Postgres != nil {
		deps.Postgres = conns.Postgres.DB
	}
	if conns.Redis != nil {
		deps.Redis = conns.Redis.Client
	}
	if conns.Elasticsearch != nil {
		deps.Elasticsearch = conns.Elasticsearch.Client
	}
	return deps
}

// New returns the provider selected by cfg.Catalog.Source.
func New(cfg *config.Config, deps Deps) (Provider, error) {
	cc := cfg.Catalog
	switch cc.Source {
	case config.CatalogSourceFile:
		schema, err := LoadSchema(cc.SchemaPath)
		if err != nil {
			return nil, err
		}
		return NewFileProvider(cc.Path, schema), nil
	case config.CatalogSourcePostgres:
		if deps.Postgres == nil {
			return nil, fmt.Errorf("catalog source %s: no postgres connection", cc.Source)
		}
		return NewPostgresProvider(deps.Postgres), nil
	case config.CatalogSourceRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("catalog source %s: no redis client", cc.Source)
		}
		schema, err := LoadSchema(cc.SchemaPath)
		if err != nil {
			return nil, err
		}
		return NewRedisProvider(deps.Redis, cc.RedisKey, schema), nil
	case config.CatalogSourceElasticsearch:
		if deps.Elasticsearch == nil {
			return nil, fmt.Errorf("catalog source %s: no elasticsearch client", cc.Source)
		}
		return NewElasticsearchProvider(deps.Elasticsearch, cc.Index, cc.ReferenceIndex), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cc.Source)
	}
}

// NewStore returns the writer for target, one of the non-file sources.
func NewStore(target string, cfg *config.Config, deps Deps) (Store, error) {
	cc := cfg.Catalog
	switch target {
	case config.CatalogSourcePostgres:
		if deps.Postgres == nil {
			return nil, fmt.Errorf("catalog target %s: no postgres connection", target)
		}
		return NewPostgresStore(deps.Postgres), nil
	case config.CatalogSourceRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("catalog target %s: no redis client", target)
		}
		return NewRedisStore(deps.Redis, cc.RedisKey), nil
	case config.CatalogSourceElasticsearch:
		if deps.Elasticsearch == nil {
			return nil, fmt.Errorf("catalog target %s: no elasticsearch client", target)
		}
		return NewElasticsearchStore(deps.Elasticsearch, cc.Index, cc.ReferenceIndex), nil
	default:
		return nil, fmt.Errorf("unsupported catalog target %q", target)
	}
}
