package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-assist/internal/common/config"
	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/common/logger"
	"scheme-assist/internal/eligibility"
	"scheme-assist/internal/models"
)

type fakeCatalog struct {
	catalog *models.Catalog
	err     error
}

func (f *fakeCatalog) Load(ctx context.Context) (*models.Catalog, error) {
	return f.catalog, f.err
}

func (f *fakeCatalog) Name() string { return "fake" }

func testCatalog() *models.Catalog {
	return &models.Catalog{
		Schemes: []models.Scheme{
			{
				SchemeID: "PMKISAN", SchemeName: "PM-KISAN", Level: models.LevelCentral, State: models.StateAll,
				Category: "Agriculture", MinAge: 18, MaxAge: 100, MinIncome: 0, MaxIncome: 200000,
				IsActive: true, LastUpdated: "2024-01-01", IsNew: true,
			},
			{
				SchemeID: "KL-HEALTH", SchemeName: "Kerala Health Cover", Level: models.LevelState, State: "Kerala",
				Category: "Health", MinAge: 0, MaxAge: 120, MinIncome: 0, MaxIncome: 300000,
				IsActive: true, LastUpdated: "2024-01-01", Deadline: "2025-03-31",
			},
			{
				SchemeID: "OLD", SchemeName: "Retired Scheme", Level: models.LevelCentral, State: models.StateAll,
				Category: "Health", MinAge: 0, MaxAge: 120, MaxIncome: 300000, IsActive: false,
			},
		},
		Categories: []string{"Agriculture", "Health"},
		States:     []string{"All India", "Kerala"},
	}
}

func newTestRouter(t *testing.T, loader *fakeCatalog) *echo.Echo {
	t.Helper()
	log := logger.NewTestLogger(t)
	builder := eligibility.NewBuilder(loader, log,
		eligibility.WithIDGenerator(func() string { return "report-1" }),
		eligibility.WithClock(func() time.Time { return time.Date(2024, 3, 15, 5, 0, 0, 0, time.UTC) }),
	)
	h := NewHandler(builder, loader, log, time.Second, 20)
	return NewRouter(config.ServerConfig{AllowOrigins: []string{"https://schemes.example.in"}}, h, log)
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const keralaHealth = `{"state":"Kerala","age":30,"annualIncome":100000,"category":"Health"}`

func TestRecommend(t *testing.T) {
	e := newTestRouter(t, &fakeCatalog{catalog: testCatalog()})

	rec := do(e, http.MethodPost, "/api/recommend", keralaHealth)
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "report-1", report.ReportID)
	assert.Equal(t, "2024-03-15T05:00:00Z", report.GeneratedAt)
	assert.Equal(t, 3, report.TotalSchemesAnalyzed)
	assert.Equal(t, 2, report.EligibleSchemesCount)
	assert.Equal(t, "KL-HEALTH", report.Recommendations[0].Scheme.SchemeID)
	assert.Equal(t, 100, report.Recommendations[0].EligibilityScore)
	assert.Equal(t, "Found 2 government schemes matching your profile", report.Summary)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRecommend_InvalidProfile(t *testing.T) {
	e := newTestRouter(t, &fakeCatalog{catalog: testCatalog()})

	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{"empty object", `{}`, []string{"state", "age", "annualIncome", "category"}},
		{"age out of range", `{"state":"Kerala","age":121,"annualIncome":0,"category":"Health"}`, []string{"age"}},
		{"negative income", `{"state":"Kerala","age":30,"annualIncome":-1,"category":"Health"}`, []string{"annualIncome"}},
		{"wrong type", `{"state":"Kerala","age":"thirty","annualIncome":0,"category":"Health"}`, []string{"age"}},
		{"not json", `nope`, []string{"body"}},
		{"trailing data", keralaHealth + ` not-json`, []string{"body"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/recommend", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ResponseError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Invalid profile", resp.Message)

			var fields []string
			for _, f := range resp.Errors {
				fields = append(fields, f.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestRecommend_BodyTooLarge(t *testing.T) {
	e := newTestRouter(t, &fakeCatalog{catalog: testCatalog()})

	body := `{"state":"Kerala","age":30,"annualIncome":100000,"category":"Health","pad":"` +
		strings.Repeat("x", 70*1024) + `"}`
	rec := do(e, http.MethodPost, "/api/recommend", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	// without a Content-Length the limit applies while reading
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(body))
	req.ContentLength = -1
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRecommend_CatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unavailable", apperrors.NewCatalogUnavailableError("fake", errors.New("no such file"))},
		{"malformed", apperrors.NewCatalogMalformedError("fake", "duplicate scheme_id PMKISAN")},
		{"plain error is treated as unavailable", errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestRouter(t, &fakeCatalog{err: tt.err})

			rec := do(e, http.MethodPost, "/api/recommend", keralaHealth)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.NotContains(t, rec.Body.String(), "recommendations")
		})
	}
}

func TestRecommendMarkdown(t *testing.T) {
	e := newTestRouter(t, &fakeCatalog{catalog: testCatalog()})

	rec := do(e, http.MethodPost, "/api/recommend/markdown", keralaHealth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/markdown")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "scheme-report-report-1.md")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# SchemeAssist - Recommendation Report"))
	assert.Contains(t, rec.Body.String(), "Kerala Health Cover")
}

func TestReferenceEndpoints(t *testing.T) {
	e := newTestRouter(t, &fakeCatalog{catalog: testCatalog()})

	rec := do(e, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"categories":["Agriculture","Health"]}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/states", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"states":["All India","Kerala"]}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/schemes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var catalog models.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	assert.Len(t, catalog.Schemes, 3)

	rec = do(e, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.SchemeStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalSchemes)
	assert.Equal(t, 1, stats.NewSchemes)
	assert.Equal(t, 1, stats.SchemesWithDeadlines)
}

func TestReferenceEndpoints_CatalogUnavailable(t *testing.T) {
	e := newTestRouter(t, &fakeCatalog{err: apperrors.NewCatalogUnavailableError("fake", errors.New("down"))})

	for _, path := range []string{"/api/categories", "/api/states", "/api/schemes", "/api/stats"} {
		rec := do(e, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestHealthAndReady(t *testing.T) {
	e := newTestRouter(t, &fakeCatalog{catalog: testCatalog()})

	rec := do(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())

	down := newTestRouter(t, &fakeCatalog{err: apperrors.NewCatalogUnavailableError("fake", errors.New("down"))})
	rec = do(down, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestRouter(t, &fakeCatalog{catalog: testCatalog()})
	do(e, http.MethodPost, "/api/recommend", keralaHealth)

	rec := do(e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scheme_reports_built_total")
}

func TestCORS(t *testing.T) {
	e := newTestRouter(t, &fakeCatalog{catalog: testCatalog()})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderOrigin, "https://schemes.example.in")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "https://schemes.example.in", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
