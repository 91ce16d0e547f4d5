// Package catalog loads and stores the scheme catalog on the supported
// backends.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/common/validation"
	"scheme-assist/internal/models"
)

// Provider supplies the catalog. Every Load reads the backend again.
type Provider interface {
	Load(ctx context.Context) (*models.Catalog, error)
	Name() string
}

// Store replaces the catalog held by a backend.
type Store interface {
	Save(ctx context.Context, catalog *models.Catalog) error
	Name() string
}

//go:embed schemas/catalog.schema.json
var defaultSchemaJSON []byte

var defaultSchema = mustCompile(defaultSchemaJSON)

func mustCompile(schemaJSON []byte) *validation.Schema {
	s, err := validation.CompileSchema(schemaJSON)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded schema: %v", err))
	}
	return s
}

// DefaultSchema returns the embedded catalog document schema.
func DefaultSchema() *validation.Schema {
	return defaultSchema
}

// LoadSchema compiles the schema at path, or returns the embedded one when
// path is empty.
func LoadSchema(path string) (*validation.Schema, error) {
	if path == "" {
		return defaultSchema, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog schema: %w", err)
	}
	return validation.CompileSchema(data)
}

// maxReportedViolations bounds the details attached to a malformed error.
const maxReportedViolations = 5

// Decode validates a JSON catalog document against schema and the bounds
// invariants. A nil schema means the embedded one.
func Decode(source string, data []byte, schema *validation.Schema) (*models.Catalog, error) {
	if schema == nil {
		schema = defaultSchema
	}

	result, err := schema.ValidateBytes(data)
	if err != nil {
		return nil, apperrors.NewCatalogMalformedError(source, fmt.Sprintf("invalid JSON: %v", err))
	}
	if !result.Valid {
		msgs := result.GetErrorMessages()
		if len(msgs) > maxReportedViolations {
			msgs = append(msgs[:maxReportedViolations], fmt.Sprintf("and %d more", len(result.Errors)-maxReportedViolations))
		}
		return nil, apperrors.NewCatalogMalformedError(source, strings.Join(msgs, "; ")).
			WithMetadata("violations", len(result.Errors))
	}

	var catalog models.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, apperrors.NewCatalogMalformedError(source, fmt.Sprintf("invalid JSON: %v", err))
	}

	if err := Check(source, &catalog); err != nil {
		return nil, err
	}
	return normalize(&catalog), nil
}

// Check enforces the invariants the scorer relies on: inclusive bounds that
// are not inverted and scheme IDs that are unique.
func Check(source string, catalog *models.Catalog) error {
	seen := make(map[string]struct{}, len(catalog.Schemes))
	for _, s := range catalog.Schemes {
		if s.MinAge > s.MaxAge {
			return apperrors.NewCatalogMalformedError(source,
				fmt.Sprintf("scheme %s: min_age %d exceeds max_age %d", s.SchemeID, s.MinAge, s.MaxAge))
		}
		if s.MinIncome > s.MaxIncome {
			return apperrors.NewCatalogMalformedError(source,
				fmt.Sprintf("scheme %s: min_income %d exceeds max_income %d", s.SchemeID, s.MinIncome, s.MaxIncome))
		}
		if _, dup := seen[s.SchemeID]; dup {
			return apperrors.NewCatalogMalformedError(source,
				fmt.Sprintf("scheme %s: duplicate scheme_id", s.SchemeID))
		}
		seen[s.SchemeID] = struct{}{}
	}
	return nil
}

// normalize replaces absent lists with empty ones so callers and JSON
// responses never see null.
func normalize(catalog *models.Catalog) *models.Catalog {
	if catalog.Schemes == nil {
		catalog.Schemes = []models.Scheme{}
	}
	if catalog.Categories == nil {
		catalog.Categories = []string{}
	}
	if catalog.States == nil {
		catalog.States = []string{}
	}
	return catalog
}
