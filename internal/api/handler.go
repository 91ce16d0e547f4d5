// internal/api/handler.go
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/common/logger"
	"scheme-assist/internal/eligibility"
	"scheme-assist/internal/models"
)

// ReportBuilder is satisfied by *eligibility.Builder.
type ReportBuilder interface {
	Build(ctx context.Context, profile models.Profile) (*models.Report, error)
}

type ResponseError struct {
	Message string                   `json:"message"`
	Errors  []eligibility.FieldError `json:"errors,omitempty"`
}

type Handler struct {
	builder       ReportBuilder
	catalog       eligibility.CatalogLoader
	logger        logger.Logger
	timeout       time.Duration
	markdownLimit int
}

func NewHandler(builder ReportBuilder, catalog eligibility.CatalogLoader, log logger.Logger, timeout time.Duration, markdownLimit int) *Handler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{
		builder:       builder,
		catalog:       catalog,
		logger:        log.WithFields(map[string]interface{}{"component": "api"}),
		timeout:       timeout,
		markdownLimit: markdownLimit,
	}
}

// Recommend scores the posted profile and returns the JSON report.
func (h *Handler) Recommend(c echo.Context) error {
	report, err := h.buildReport(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// RecommendMarkdown returns the same report rendered as markdown.
func (h *Handler) RecommendMarkdown(c echo.Context) error {
	report, err := h.buildReport(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="scheme-report-`+report.ReportID+`.md"`)
	return c.Blob(http.StatusOK, "text/markdown; charset=UTF-8", []byte(eligibility.RenderMarkdown(report, h.markdownLimit)))
}

func (h *Handler) buildReport(c echo.Context) (*models.Report, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}

	profile, err := eligibility.DecodeProfile(body)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	return h.builder.Build(ctx, profile)
}

func (h *Handler) GetCategories(c echo.Context) error {
	catalog, err := h.loadCatalog(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": catalog.Categories,
	})
}

func (h *Handler) GetStates(c echo.Context) error {
	catalog, err := h.loadCatalog(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"states": catalog.States,
	})
}

func (h *Handler) GetSchemes(c echo.Context) error {
	catalog, err := h.loadCatalog(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, catalog)
}

func (h *Handler) GetStats(c echo.Context) error {
	catalog, err := h.loadCatalog(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, eligibility.Stats(catalog))
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the catalog can currently be loaded.
func (h *Handler) Ready(c echo.Context) error {
	if _, err := h.loadCatalog(c); err != nil {
		h.logger.Warn("readiness check failed", map[string]interface{}{"error": err.Error()})
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"message": apperrors.Normalize(err).Message,
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) loadCatalog(c echo.Context) (*models.Catalog, error) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()
	return h.catalog.Load(ctx)
}

func (h *Handler) errorResponse(c echo.Context, err error) error {
	var profileErr *eligibility.InvalidProfileError
	if errors.As(err, &profileErr) {
		return c.JSON(http.StatusBadRequest, ResponseError{
			Message: "Invalid profile",
			Errors:  profileErr.Errors,
		})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, ResponseError{Message: http.StatusText(httpErr.Code)})
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.logger.Error("request timed out", map[string]interface{}{"path": c.Path()})
		return c.JSON(http.StatusGatewayTimeout, ResponseError{Message: "request timed out"})
	}

	stdErr := apperrors.Normalize(err)
	if apperrors.GetErrorCategory(stdErr.Code) == "CATALOG" {
		h.logger.Error("catalog unavailable", map[string]interface{}{
			"path":      c.Path(),
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: stdErr.Message})
	}

	h.logger.Error("request failed", map[string]interface{}{
		"path":  c.Path(),
		"error": err.Error(),
	})
	return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal server error"})
}
