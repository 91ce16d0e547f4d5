package catalog

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "scheme-assist/internal/common/errors"
)

// fakeES implements the handful of endpoints the provider and store call.
type fakeES struct {
	mu        sync.Mutex
	docs      map[string]json.RawMessage
	reference json.RawMessage
	bulkItems int
	failBulk  bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(r.URL.Path, "/_search"):
		f.search(w)
	case strings.HasSuffix(r.URL.Path, "/_delete_by_query"):
		n := len(f.docs)
		f.docs = map[string]json.RawMessage{}
		writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": n})
	case r.URL.Path == "/_bulk":
		f.bulk(w, r)
	case strings.HasSuffix(r.URL.Path, "/_doc/reference") && r.Method == http.MethodPut:
		var doc json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.reference = doc
		writeJSON(w, http.StatusCreated, map[string]interface{}{"result": "created"})
	case strings.HasSuffix(r.URL.Path, "/_doc/reference"):
		if f.reference == nil {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"found": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"found": true, "_source": f.reference})
	default:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "no handler"})
	}
}

func (f *fakeES) search(w http.ResponseWriter) {
	type hit struct {
		pos    int
		source json.RawMessage
	}
	var hits []hit
	for _, doc := range f.docs {
		var p struct {
			Position int `json:"position"`
		}
		_ = json.Unmarshal(doc, &p)
		hits = append(hits, hit{p.Position, doc})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]map[string]interface{}, len(hits))
	for i, h := range hits {
		out[i] = map[string]interface{}{"_source": h.source}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hits": map[string]interface{}{"hits": out},
	})
}

func (f *fakeES) bulk(w http.ResponseWriter, r *http.Request) {
	scanner := bufio.NewScanner(r.Body)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var meta struct {
			Index struct {
				ID string `json:"_id"`
			} `json:"index"`
		}
		_ = json.Unmarshal(scanner.Bytes(), &meta)
		if !scanner.Scan() {
			break
		}
		f.docs[meta.Index.ID] = json.RawMessage(append([]byte(nil), scanner.Bytes()...))
		f.bulkItems++
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"errors": f.failBulk, "items": []interface{}{}})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newFakeES(t *testing.T) (*fakeES, *elasticsearch.Client) {
	t.Helper()
	fake := &fakeES{docs: map[string]json.RawMessage{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return fake, client
}

func TestElasticsearch_SaveThenLoad(t *testing.T) {
	fake, client := newFakeES(t)
	ctx := context.Background()

	want := fixtureCatalog(t)
	fake.docs["STALE"] = json.RawMessage(`{"scheme_id":"STALE","position":0}`)

	require.NoError(t, NewElasticsearchStore(client, "schemes", "scheme-reference").Save(ctx, want))
	assert.Equal(t, 3, fake.bulkItems)
	assert.NotContains(t, fake.docs, "STALE")

	got, err := NewElasticsearchProvider(client, "schemes", "scheme-reference").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestElasticsearchProvider_MissingReferenceIsUnavailable(t *testing.T) {
	_, client := newFakeES(t)

	_, err := NewElasticsearchProvider(client, "schemes", "scheme-reference").Load(context.Background())

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeCatalogUnavailable, stdErr.Code)
	assert.Contains(t, stdErr.Details, "scheme-reference/reference not found")
}

func TestElasticsearchProvider_UnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{addr}, MaxRetries: 1})
	require.NoError(t, err)

	_, err = NewElasticsearchProvider(client, "schemes", "scheme-reference").Load(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCatalogUnavailable))
}

func TestElasticsearchStore_BulkItemFailure(t *testing.T) {
	fake, client := newFakeES(t)
	fake.failBulk = true

	err := NewElasticsearchStore(client, "schemes", "scheme-reference").Save(context.Background(), fixtureCatalog(t))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCatalogWriteFailed))
	assert.Nil(t, fake.reference)
}
