package catalog

import (
	"context"
	"fmt"
	"os"

	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/common/validation"
	"scheme-assist/internal/models"
)

// FileProvider reads the catalog from a JSON document on disk.
type FileProvider struct {
	path   string
	schema *validation.Schema
}

// NewFileProvider returns a provider for path. A nil schema means the
// embedded one.
func NewFileProvider(path string, schema *validation.Schema) *FileProvider {
	if schema == nil {
		schema = defaultSchema
	}
	return &FileProvider{path: path, schema: schema}
}

func (p *FileProvider) Name() string { return "file" }

func (p *FileProvider) Load(ctx context.Context) (*models.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewCatalogUnavailableError(p.Name(), err)
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, apperrors.NewCatalogUnavailableError(p.Name(), fmt.Errorf("read %s: %w", p.path, err))
	}

	return Decode(p.Name(), data, p.schema)
}
