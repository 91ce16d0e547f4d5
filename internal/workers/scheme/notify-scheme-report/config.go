// internal/workers/scheme/notify-scheme-report/config.go
package notifyschemereport

import (
	"time"

	"scheme-assist/internal/common/config"
	"scheme-assist/internal/eligibility"
	"scheme-assist/internal/models"
)

type Config struct {
	EmailEnabled      bool
	SMSEnabled        bool
	FromEmail         string
	PriorityThreshold models.Priority
	MarkdownLimit     int
	Timeout           time.Duration
}

func LoadConfig(cfg *config.Config, wc config.WorkerConfig) *Config {
	c := &Config{
		EmailEnabled:      cfg.Notifications.Email.Enabled,
		SMSEnabled:        cfg.Notifications.SMS.Enabled,
		FromEmail:         cfg.Notifications.Email.FromEmail,
		PriorityThreshold: models.Priority(cfg.Notifications.SMS.PriorityThreshold),
		MarkdownLimit:     cfg.Recommendation.MarkdownLimit,
		Timeout:           config.GetDuration(wc.Timeout),
	}
	if c.PriorityThreshold == "" {
		c.PriorityThreshold = models.PriorityHigh
	}
	if c.MarkdownLimit <= 0 {
		c.MarkdownLimit = eligibility.DefaultMarkdownLimit
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}
