package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/models"
)

const (
	referenceDocID = "reference"
	maxSearchSize  = 10000
)

type schemeDocument struct {
	models.Scheme
	Position int `json:"position"`
}

type referenceDocument struct {
	Categories []string `json:"categories"`
	States     []string `json:"states"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.Scheme `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type getResponse struct {
	Found  bool              `json:"found"`
	Source referenceDocument `json:"_source"`
}

// ElasticsearchProvider reads one document per scheme from index, ordered by
// position, and the reference lists from a single document in refIndex.
type ElasticsearchProvider struct {
	transport esapi.Transport
	index     string
	refIndex  string
}

func NewElasticsearchProvider(transport esapi.Transport, index, refIndex string) *ElasticsearchProvider {
	return &ElasticsearchProvider{transport: transport, index: index, refIndex: refIndex}
}

func (p *ElasticsearchProvider) Name() string { return "elasticsearch" }

func (p *ElasticsearchProvider) Load(ctx context.Context) (*models.Catalog, error) {
	schemes, err := p.searchSchemes(ctx)
	if err != nil {
		return nil, err
	}

	ref, err := p.getReference(ctx)
	if err != nil {
		return nil, err
	}

	catalog := &models.Catalog{Schemes: schemes, Categories: ref.Categories, States: ref.States}
	if err := Check(p.Name(), catalog); err != nil {
		return nil, err
	}
	return normalize(catalog), nil
}

func (p *ElasticsearchProvider) searchSchemes(ctx context.Context) ([]models.Scheme, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort":  []interface{}{map[string]interface{}{"position": "asc"}},
		"size":  maxSearchSize,
	})

	req := esapi.SearchRequest{
		Index: []string{p.index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, p.transport)
	if err != nil {
		return nil, apperrors.NewCatalogUnavailableError(p.Name(), err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewCatalogUnavailableError(p.Name(), fmt.Errorf("search %s failed: %s", p.index, res.Status()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, apperrors.NewCatalogMalformedError(p.Name(), fmt.Sprintf("decode search response: %v", err))
	}

	schemes := make([]models.Scheme, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		schemes = append(schemes, hit.Source)
	}
	return schemes, nil
}

func (p *ElasticsearchProvider) getReference(ctx context.Context) (referenceDocument, error) {
	req := esapi.GetRequest{
		Index:      p.refIndex,
		DocumentID: referenceDocID,
	}

	res, err := req.Do(ctx, p.transport)
	if err != nil {
		return referenceDocument{}, apperrors.NewCatalogUnavailableError(p.Name(), err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return referenceDocument{}, apperrors.NewCatalogUnavailableError(p.Name(),
			fmt.Errorf("reference document %s/%s not found", p.refIndex, referenceDocID))
	}
	if res.IsError() {
		return referenceDocument{}, apperrors.NewCatalogUnavailableError(p.Name(), fmt.Errorf("get reference failed: %s", res.Status()))
	}

	var r getResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return referenceDocument{}, apperrors.NewCatalogMalformedError(p.Name(), fmt.Sprintf("decode reference document: %v", err))
	}
	return r.Source, nil
}

// ElasticsearchStore clears index and bulk-indexes the catalog, then writes
// the reference document.
type ElasticsearchStore struct {
	transport esapi.Transport
	index     string
	refIndex  string
}

func NewElasticsearchStore(transport esapi.Transport, index, refIndex string) *ElasticsearchStore {
	return &ElasticsearchStore{transport: transport, index: index, refIndex: refIndex}
}

func (s *ElasticsearchStore) Name() string { return "elasticsearch" }

func (s *ElasticsearchStore) Save(ctx context.Context, catalog *models.Catalog) error {
	if err := Check(s.Name(), catalog); err != nil {
		return err
	}

	steps := []func(context.Context, *models.Catalog) error{
		s.clear,
		s.bulkIndex,
		s.putReference,
	}
	for _, step := range steps {
		if err := step(ctx, catalog); err != nil {
			return apperrors.NewCatalogWriteFailedError(s.Name(), err)
		}
	}
	return nil
}

func (s *ElasticsearchStore) clear(ctx context.Context, _ *models.Catalog) error {
	refresh := true
	req := esapi.DeleteByQueryRequest{
		Index:   []string{s.index},
		Body:    strings.NewReader(`{"query":{"match_all":{}}}`),
		Refresh: &refresh,
	}

	res, err := req.Do(ctx, s.transport)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	// A missing index has nothing to clear.
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("clear %s failed: %s", s.index, res.Status())
	}
	return nil
}

func (s *ElasticsearchStore) bulkIndex(ctx context.Context, catalog *models.Catalog) error {
	if len(catalog.Schemes) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, sc := range catalog.Schemes {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_index": s.index, "_id": sc.SchemeID},
		}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(schemeDocument{Scheme: sc, Position: i}); err != nil {
			return err
		}
	}

	req := esapi.BulkRequest{
		Body:    &buf,
		Refresh: "true",
	}

	res, err := req.Do(ctx, s.transport)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index failed: %s", res.Status())
	}

	var r struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if r.Errors {
		return fmt.Errorf("bulk index reported item failures")
	}
	return nil
}

func (s *ElasticsearchStore) putReference(ctx context.Context, catalog *models.Catalog) error {
	body, err := json.Marshal(referenceDocument{Categories: catalog.Categories, States: catalog.States})
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.refIndex,
		DocumentID: referenceDocID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, s.transport)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index reference document failed: %s", res.Status())
	}
	return nil
}
