package eligibility

import (
	"math"

	"scheme-assist/internal/models"
)

const (
	ageWeight      = 25
	ageMaxBonus    = 5
	incomeWeight   = 30
	incomeMaxBonus = 10
	stateWeight    = 20
	stateBonus     = 5
	categoryWeight = 25
	relatedPoints  = 10

	maxPoints = ageWeight + incomeWeight + stateWeight + categoryWeight
)

// Breakdown holds the points each factor earned before normalization.
// Bonuses are not clamped per factor.
type Breakdown struct {
	Age      float64 `json:"age"`
	Income   float64 `json:"income"`
	State    float64 `json:"state"`
	Category float64 `json:"category"`
}

// Total sums the factor points.
func (b Breakdown) Total() float64 {
	return b.Age + b.Income + b.State + b.Category
}

// Score returns the normalized eligibility score of profile for scheme, in [0, 100].
func Score(scheme models.Scheme, profile models.Profile) int {
	return normalize(Evaluate(scheme, profile).Total())
}

// Evaluate computes the per-factor points for a (scheme, profile) pair.
func Evaluate(scheme models.Scheme, profile models.Profile) Breakdown {
	var b Breakdown

	if ageEligible(scheme, profile) {
		b.Age = ageWeight
		if span := scheme.MaxAge - scheme.MinAge; span > 0 {
			pos := float64(profile.Age-scheme.MinAge) / float64(span)
			b.Age += (1 - math.Abs(pos-0.5)*2) * ageMaxBonus
		}
	}

	if incomeEligible(scheme, profile) {
		b.Income = incomeWeight
		if span := scheme.MaxIncome - scheme.MinIncome; span > 0 {
			headroom := (float64(scheme.MaxIncome) - profile.AnnualIncome) / float64(span)
			b.Income += headroom * incomeMaxBonus
		}
	}

	if stateEligible(scheme, profile) {
		b.State = stateWeight
		if scheme.State == profile.State && scheme.Level == models.LevelState {
			b.State += stateBonus
		}
	}

	switch {
	case scheme.Category == profile.Category:
		b.Category = categoryWeight
	case IsRelated(profile.Category, scheme.Category):
		b.Category = relatedPoints
	}

	return b
}

// normalize scales total against the constant denominator and floors it.
// Multiplying before dividing keeps integral totals exact, so a total of 57
// scores 57 rather than 56.
func normalize(total float64) int {
	n := int(math.Floor(total * 100 / maxPoints))
	if n > 100 {
		return 100
	}
	if n < 0 {
		return 0
	}
	return n
}

func ageEligible(s models.Scheme, p models.Profile) bool {
	return p.Age >= s.MinAge && p.Age <= s.MaxAge
}

func incomeEligible(s models.Scheme, p models.Profile) bool {
	return p.AnnualIncome >= float64(s.MinIncome) && p.AnnualIncome <= float64(s.MaxIncome)
}

func stateEligible(s models.Scheme, p models.Profile) bool {
	return s.State == models.StateAll || s.State == p.State || p.State == models.StateAllIndia
}
