// internal/workers/scheme/notify-scheme-report/handler.go
package notifyschemereport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/common/logger"
	"scheme-assist/internal/common/metrics"
	"scheme-assist/internal/common/validation"
	"scheme-assist/internal/eligibility"
	"scheme-assist/internal/models"
)

const (
	TaskType = "notify-scheme-report"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	sesClient SESService
	snsClient SNSService
	schema    *validation.Schema
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, sesClient SESService, snsClient SNSService, schema *validation.Schema, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		sesClient: sesClient,
		snsClient: snsClient,
		schema:    schema,
		errors:    apperrors.NewErrorHandler(scoped),
		logger:    scoped,
		now:       time.Now,
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

	input, err := h.decodeInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

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

// execute delivers the report on every enabled channel. A channel failure
// is retryable only when nothing was delivered; otherwise the job completes
// with status failed so recipients are not messaged twice.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.Report == nil {
		return nil, apperrors.NewInvalidJobInputError("report is required")
	}
	if input.RecipientEmail != "" && !validation.ValidateEmail(input.RecipientEmail) {
		return nil, apperrors.NewInvalidJobInputError(fmt.Sprintf("invalid recipientEmail %q", input.RecipientEmail))
	}
	if input.RecipientPhone != "" && !validation.ValidatePhone(input.RecipientPhone) {
		return nil, apperrors.NewInvalidJobInputError(fmt.Sprintf("invalid recipientPhone %q", input.RecipientPhone))
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		SentAt:         h.now().UTC().Format(time.RFC3339),
		Channels:       []models.ChannelResult{},
	}

	var sendErrs []error

	if h.config.EmailEnabled && input.RecipientEmail != "" {
		result := models.ChannelResult{Channel: models.ChannelEmail, Recipient: input.RecipientEmail}
		messageID, err := h.sendEmail(ctx, input.RecipientEmail, emailSubject(input.Report), eligibility.RenderMarkdown(input.Report, h.config.MarkdownLimit))
		if err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"email": input.RecipientEmail,
			})
			result.Status = models.NotificationFailed
			result.Error = err.Error()
			sendErrs = append(sendErrs, apperrors.NewNotificationSendFailedError(models.ChannelEmail, err))
		} else {
			result.Status = models.NotificationSent
			result.MessageID = messageID
		}
		output.Channels = append(output.Channels, result)
	}

	// SMS only if: enabled AND phone exists AND an alert meets the threshold
	if h.config.SMSEnabled && input.RecipientPhone != "" && meetsThreshold(input.Report, h.config.PriorityThreshold) {
		result := models.ChannelResult{Channel: models.ChannelSMS, Recipient: input.RecipientPhone}
		messageID, err := h.sendSMS(ctx, input.RecipientPhone, smsMessage(input.Report))
		if err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error": err,
				"phone": input.RecipientPhone,
			})
			result.Status = models.NotificationFailed
			result.Error = err.Error()
			sendErrs = append(sendErrs, apperrors.NewNotificationSendFailedError(models.ChannelSMS, err))
		} else {
			result.Status = models.NotificationSent
			result.MessageID = messageID
		}
		output.Channels = append(output.Channels, result)
	}

	switch {
	case len(output.Channels) == 0:
		output.Status = models.NotificationDisabled
	case len(sendErrs) == len(output.Channels):
		return nil, fmt.Errorf("%w: %w", ErrNotificationSendFailed, sendErrs[0])
	case len(sendErrs) > 0:
		output.Status = models.NotificationFailed
	default:
		output.Status = models.NotificationSent
	}

	return output, nil
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) (string, error) {
	out, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) (string, error) {
	out, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

func emailSubject(report *models.Report) string {
	return fmt.Sprintf("Your government scheme recommendations (%d found)", report.EligibleSchemesCount)
}

// smsMessage names the first scheme carrying a high priority alert.
func smsMessage(report *models.Report) string {
	msg := fmt.Sprintf("SchemeAssist: %d schemes match your profile.", report.EligibleSchemesCount)
	for _, rec := range report.Recommendations {
		for _, a := range rec.Alerts {
			if a.Priority == models.PriorityHigh {
				return fmt.Sprintf("%s %s: %s", msg, rec.Scheme.SchemeName, a.Message)
			}
		}
	}
	return msg
}

var priorityRank = map[models.Priority]int{
	models.PriorityLow:    1,
	models.PriorityMedium: 2,
	models.PriorityHigh:   3,
}

// meetsThreshold reports whether any alert is at least as urgent as threshold.
// An unknown threshold is treated as high.
func meetsThreshold(report *models.Report, threshold models.Priority) bool {
	if threshold == models.PriorityHigh || priorityRank[threshold] == 0 {
		return report.HasHighPriorityAlert()
	}
	for _, rec := range report.Recommendations {
		for _, a := range rec.Alerts {
			if priorityRank[a.Priority] >= priorityRank[threshold] {
				return true
			}
		}
	}
	return false
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
		"jobKey":         job.Key,
		"notificationId": output.NotificationID,
		"status":         output.Status,
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
