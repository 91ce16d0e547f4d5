// internal/workers/scheme/notify-scheme-report/models.go
package notifyschemereport

import "scheme-assist/internal/models"

type Input struct {
	Report         *models.Report `json:"report"`
	RecipientEmail string         `json:"recipientEmail,omitempty"`
	RecipientPhone string         `json:"recipientPhone,omitempty"`
}

type Output struct {
	NotificationID string                 `json:"notificationId"`
	Status         string                 `json:"status"` // "sent", "failed", "disabled"
	SentAt         string                 `json:"sentAt"` // ISO 8601
	Channels       []models.ChannelResult `json:"channels"`
}
