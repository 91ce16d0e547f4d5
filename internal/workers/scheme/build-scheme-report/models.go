// internal/workers/scheme/build-scheme-report/models.go
package buildschemereport

import (
	"encoding/json"

	"scheme-assist/internal/models"
)

type Input struct {
	UserProfile json.RawMessage `json:"userProfile"`
}

type Output struct {
	Report               *models.Report `json:"report"`
	EligibleSchemesCount int            `json:"eligibleSchemesCount"`
	HasHighPriorityAlert bool           `json:"hasHighPriorityAlert"`
}
