// internal/models/report.go
package models

type AlertType string

const (
	AlertPerfectMatch        AlertType = "perfect_match"
	AlertNewScheme           AlertType = "new_scheme"
	AlertDeadlineApproaching AlertType = "deadline_approaching"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Alert struct {
	Type     AlertType `json:"type"`
	Message  string    `json:"message"`
	Priority Priority  `json:"priority"`
}

// Recommendation is one scheme that passed the eligibility threshold.
type Recommendation struct {
	Scheme           Scheme   `json:"scheme"`
	EligibilityScore int      `json:"eligibilityScore"`
	Reasons          []string `json:"reasons"`
	Alerts           []Alert  `json:"alerts"`
}

// Report is the ranked result of scoring a whole catalog against one profile.
type Report struct {
	ReportID             string           `json:"reportId"`
	GeneratedAt          string           `json:"generatedAt"`
	UserProfile          Profile          `json:"userProfile"`
	TotalSchemesAnalyzed int              `json:"totalSchemesAnalyzed"`
	EligibleSchemesCount int              `json:"eligibleSchemesCount"`
	Recommendations      []Recommendation `json:"recommendations"`
	Summary              string           `json:"summary"`
}

// HasHighPriorityAlert reports whether any recommendation carries a high priority alert.
func (r *Report) HasHighPriorityAlert() bool {
	for _, rec := range r.Recommendations {
		for _, a := range rec.Alerts {
			if a.Priority == PriorityHigh {
				return true
			}
		}
	}
	return false
}
