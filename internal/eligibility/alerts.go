package eligibility

import "scheme-assist/internal/models"

const perfectMatchScore = 90

// Alerts returns the notices attached to a recommended scheme, in the order
// perfect match, new scheme, deadline.
func Alerts(scheme models.Scheme, score int) []models.Alert {
	alerts := make([]models.Alert, 0, 3)

	if score >= perfectMatchScore {
		alerts = append(alerts, models.Alert{
			Type:     models.AlertPerfectMatch,
			Message:  "You are highly eligible for this scheme",
			Priority: models.PriorityHigh,
		})
	}

	if scheme.IsNew {
		alerts = append(alerts, models.Alert{
			Type:     models.AlertNewScheme,
			Message:  "This is a newly launched scheme",
			Priority: models.PriorityMedium,
		})
	}

	if scheme.Deadline != "" {
		alerts = append(alerts, models.Alert{
			Type:     models.AlertDeadlineApproaching,
			Message:  "Deadline: " + scheme.Deadline,
			Priority: models.PriorityHigh,
		})
	}

	return alerts
}
