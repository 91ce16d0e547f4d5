// internal/workers/scheme/build-scheme-report/handler.go
package buildschemereport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/common/logger"
	"scheme-assist/internal/common/metrics"
	"scheme-assist/internal/common/validation"
	"scheme-assist/internal/eligibility"
	"scheme-assist/internal/models"
)

const (
	TaskType = "build-scheme-report"
)

var (
	ErrReportBuildFailed = errors.New("REPORT_BUILD_FAILED")
)

// ReportBuilder is satisfied by *eligibility.Builder.
type ReportBuilder interface {
	Build(ctx context.Context, profile models.Profile) (*models.Report, error)
}

type Handler struct {
	config  *Config
	builder ReportBuilder
	schema  *validation.Schema
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

// NewHandler creates the handler. schema may be nil, in which case only the
// profile itself is validated.
func NewHandler(config *Config, builder ReportBuilder, schema *validation.Schema, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		builder: builder,
		schema:  schema,
		errors:  apperrors.NewErrorHandler(scoped),
		logger:  scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.decodeInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// decodeInput checks the job variables against the registry input schema
// before decoding them.
func (h *Handler) decodeInput(variables string) (*Input, error) {
	if h.schema != nil {
		result, err := h.schema.ValidateBytes([]byte(variables))
		if err != nil {
			return nil, apperrors.NewInvalidJobInputError(err.Error())
		}
		if !result.Valid {
			return nil, apperrors.NewInvalidJobInputError(strings.Join(result.GetErrorMessages(), "; "))
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidJobInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || len(input.UserProfile) == 0 {
		return nil, apperrors.NewInvalidJobInputError("userProfile is required")
	}

	profile, err := eligibility.DecodeProfile(input.UserProfile)
	if err != nil {
		return nil, err
	}

	report, err := h.builder.Build(ctx, profile)
	if err != nil {
		if _, ok := apperrors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewReportBuildFailedError(fmt.Errorf("%w: %v", ErrReportBuildFailed, err))
	}

	return &Output{
		Report:               report,
		EligibleSchemesCount: report.EligibleSchemesCount,
		HasHighPriorityAlert: report.HasHighPriorityAlert(),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":               job.Key,
		"eligibleSchemesCount": output.EligibleSchemesCount,
		"hasHighPriorityAlert": output.HasHighPriorityAlert,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	code := apperrors.Normalize(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.errors.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
