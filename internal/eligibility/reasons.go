package eligibility

import (
	"fmt"

	"scheme-assist/internal/models"
)

const lakh = 100000

// Reasons explains which eligibility conditions profile satisfies for scheme,
// in the order age, income, state, category.
//
// A profile using the "All India" sentinel is state-eligible for every scheme
// but only gets a state reason when the scheme itself is nationwide or names
// the same state.
func Reasons(scheme models.Scheme, profile models.Profile) []string {
	reasons := make([]string, 0, 4)

	if ageEligible(scheme, profile) {
		reasons = append(reasons, fmt.Sprintf(
			"Your age (%d) meets the eligibility criteria (%d-%d years)",
			profile.Age, scheme.MinAge, scheme.MaxAge))
	}

	if incomeEligible(scheme, profile) {
		reasons = append(reasons, fmt.Sprintf(
			"Your annual income (₹%.1fL) is within the limit (up to ₹%.1fL)",
			profile.AnnualIncome/lakh, float64(scheme.MaxIncome)/lakh))
	}

	switch {
	case scheme.State == models.StateAll:
		reasons = append(reasons, "This Central Government scheme is available across all states")
	case scheme.State == profile.State:
		reasons = append(reasons, fmt.Sprintf("This scheme is specifically available in %s", profile.State))
	}

	if scheme.Category == profile.Category {
		reasons = append(reasons, fmt.Sprintf("This scheme is specifically designed for %s", profile.Category))
	}

	return reasons
}
