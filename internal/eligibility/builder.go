package eligibility

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/common/logger"
	"scheme-assist/internal/common/metrics"
	"scheme-assist/internal/models"
)

// DefaultMinScore is the lowest score a scheme needs to be recommended.
const DefaultMinScore = 30

// CatalogLoader supplies the scheme catalog. Implementations are read fresh on
// every call.
type CatalogLoader interface {
	Load(ctx context.Context) (*models.Catalog, error)
}

// Recorder receives one observation per report build.
type Recorder interface {
	RecordReport(ctx context.Context, source, status string, duration time.Duration, recommendations int)
}

type Option func(*Builder)

// WithMinScore overrides DefaultMinScore.
func WithMinScore(score int) Option {
	return func(b *Builder) { b.minScore = score }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithIDGenerator overrides the report ID source.
func WithIDGenerator(newID func() string) Option {
	return func(b *Builder) { b.newID = newID }
}

// WithRecorder adds an observer for report builds.
func WithRecorder(r Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// Builder produces ranked recommendation reports. It keeps no state between
// calls and is safe for concurrent use.
type Builder struct {
	catalog  CatalogLoader
	logger   logger.Logger
	tracer   trace.Tracer
	source   string
	minScore int
	now      func() time.Time
	newID    func() string
	recorder Recorder
}

func NewBuilder(catalog CatalogLoader, log logger.Logger, opts ...Option) *Builder {
	b := &Builder{
		catalog:  catalog,
		logger:   log.WithFields(map[string]interface{}{"component": "report-builder"}),
		tracer:   otel.Tracer("scheme-assist/eligibility"),
		source:   sourceName(catalog),
		minScore: DefaultMinScore,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func sourceName(catalog CatalogLoader) string {
	if named, ok := catalog.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "unknown"
}

// BuildFromInput validates in and builds a report for it. Validation happens
// before the catalog is touched.
func (b *Builder) BuildFromInput(ctx context.Context, in models.ProfileInput) (*models.Report, error) {
	profile, err := ValidateProfile(in)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, profile)
}

// Build loads the catalog once and ranks every active scheme against profile.
// Catalog failures are returned unchanged and no partial report is produced.
func (b *Builder) Build(ctx context.Context, profile models.Profile) (*models.Report, error) {
	ctx, span := b.tracer.Start(ctx, "eligibility.Build")
	defer span.End()

	start := time.Now()

	catalog, err := b.catalog.Load(ctx)
	if err != nil {
		stdErr, ok := apperrors.AsStandardError(err)
		if !ok {
			stdErr = apperrors.NewCatalogUnavailableError(b.source, err)
			err = stdErr
		}
		metrics.CatalogLoadFailures.WithLabelValues(b.source, string(stdErr.Code)).Inc()
		b.observe(ctx, "error", start, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog load failed")
		b.logger.Error("catalog load failed", map[string]interface{}{
			"source":    b.source,
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
		return nil, err
	}

	recs := Recommend(catalog.Schemes, profile, b.minScore)

	report := &models.Report{
		ReportID:             b.newID(),
		GeneratedAt:          b.now().UTC().Format(time.RFC3339),
		UserProfile:          profile,
		TotalSchemesAnalyzed: len(catalog.Schemes),
		EligibleSchemesCount: len(recs),
		Recommendations:      recs,
		Summary:              fmt.Sprintf("Found %d government schemes matching your profile", len(recs)),
	}

	span.SetAttributes(
		attribute.String("report.id", report.ReportID),
		attribute.Int("report.analyzed", report.TotalSchemesAnalyzed),
		attribute.Int("report.eligible", report.EligibleSchemesCount),
	)
	b.observe(ctx, "success", start, len(recs))

	b.logger.Info("report built", map[string]interface{}{
		"reportId":  report.ReportID,
		"source":    b.source,
		"analyzed":  report.TotalSchemesAnalyzed,
		"eligible":  report.EligibleSchemesCount,
		"duration":  time.Since(start).String(),
		"category":  profile.Category,
		"stateCode": profile.State,
	})

	return report, nil
}

func (b *Builder) observe(ctx context.Context, status string, start time.Time, recs int) {
	elapsed := time.Since(start)
	metrics.ReportsBuilt.WithLabelValues(b.source, status).Inc()
	metrics.ReportDuration.WithLabelValues(b.source).Observe(elapsed.Seconds())
	if status == "success" {
		metrics.RecommendationsReturned.Observe(float64(recs))
	}
	if b.recorder != nil {
		b.recorder.RecordReport(ctx, b.source, status, elapsed, recs)
	}
}

// Recommend scores every active scheme, drops those under minScore and orders
// the rest by descending score. Equal scores keep catalog order.
func Recommend(schemes []models.Scheme, profile models.Profile, minScore int) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(schemes))

	for _, scheme := range schemes {
		if !scheme.IsActive {
			continue
		}

		score := Score(scheme, profile)
		if score < minScore {
			continue
		}

		recs = append(recs, models.Recommendation{
			Scheme:           scheme,
			EligibilityScore: score,
			Reasons:          Reasons(scheme, profile),
			Alerts:           Alerts(scheme, score),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].EligibilityScore > recs[j].EligibilityScore
	})

	return recs
}
