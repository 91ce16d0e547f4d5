package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scheme-assist/internal/models"
)

func scheme(mod func(*models.Scheme)) models.Scheme {
	s := models.Scheme{
		SchemeID:    "S1",
		SchemeName:  "Test Scheme",
		Level:       models.LevelCentral,
		State:       models.StateAll,
		Category:    "Agriculture",
		MinAge:      18,
		MaxAge:      60,
		MinIncome:   0,
		MaxIncome:   200000,
		TargetGroup: "Farmers",
		Benefits:    "Rs 6000/year",
		IsActive:    true,
		LastUpdated: "2024-01-01",
	}
	if mod != nil {
		mod(&s)
	}
	return s
}

func profile(mod func(*models.Profile)) models.Profile {
	p := models.Profile{State: "Kerala", Age: 39, AnnualIncome: 0, Category: "Agriculture"}
	if mod != nil {
		mod(&p)
	}
	return p
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		scheme  models.Scheme
		profile models.Profile
		want    int
	}{
		{
			name:    "every factor with full bonuses is capped at 100",
			scheme:  scheme(nil),
			profile: profile(nil),
			want:    100,
		},
		{
			name: "zero spans earn base points only",
			scheme: scheme(func(s *models.Scheme) {
				s.MinAge, s.MaxAge = 30, 30
				s.MinIncome, s.MaxIncome = 100000, 100000
				s.State = "Goa"
				s.Category = "Housing"
			}),
			profile: profile(func(p *models.Profile) {
				p.Age = 30
				p.AnnualIncome = 100000
				p.Category = "Education"
			}),
			want: 55,
		},
		{
			name:   "related category alone",
			scheme: scheme(func(s *models.Scheme) { s.State = "Goa"; s.Category = "Skill Development" }),
			profile: profile(func(p *models.Profile) {
				p.Age = 70
				p.AnnualIncome = 500000
			}),
			want: 10,
		},
		{
			name: "state level scheme in the profile state gets the bonus",
			scheme: scheme(func(s *models.Scheme) {
				s.Level = models.LevelState
				s.State = "Kerala"
				s.MinAge, s.MaxAge = 40, 40
				s.Category = "Housing"
			}),
			profile: profile(func(p *models.Profile) {
				p.Age = 40
				p.AnnualIncome = 900000
				p.Category = "Education"
			}),
			want: 50,
		},
		{
			name: "all india profile matches a state scheme without bonus",
			scheme: scheme(func(s *models.Scheme) {
				s.Level = models.LevelState
				s.State = "Kerala"
				s.Category = "Housing"
			}),
			profile: profile(func(p *models.Profile) {
				p.State = models.StateAllIndia
				p.Age = 90
				p.AnnualIncome = 900000
				p.Category = "Education"
			}),
			want: 20,
		},
		{
			name:   "income headroom at the midpoint",
			scheme: scheme(func(s *models.Scheme) { s.State = "Goa"; s.Category = "Housing" }),
			profile: profile(func(p *models.Profile) {
				p.Age = 10
				p.AnnualIncome = 100000
				p.Category = "Education"
			}),
			want: 35,
		},
		{
			name: "fractional total is floored",
			scheme: scheme(func(s *models.Scheme) {
				s.MinAge, s.MaxAge = 20, 40
				s.State = "Goa"
				s.Category = "Housing"
			}),
			profile: profile(func(p *models.Profile) {
				p.Age = 25
				p.AnnualIncome = 900000
				p.Category = "Education"
			}),
			want: 27,
		},
		{
			name:    "nothing matches",
			scheme:  scheme(func(s *models.Scheme) { s.State = "Goa"; s.Category = "Housing" }),
			profile: profile(func(p *models.Profile) { p.Age = 5; p.AnnualIncome = 900000; p.Category = "Education" }),
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.scheme, tt.profile))
		})
	}
}

func TestEvaluate_Breakdown(t *testing.T) {
	b := Evaluate(scheme(nil), profile(nil))

	assert.Equal(t, 30.0, b.Age)
	assert.Equal(t, 40.0, b.Income)
	assert.Equal(t, 20.0, b.State)
	assert.Equal(t, 25.0, b.Category)
	assert.Equal(t, 115.0, b.Total())
}

func TestEvaluate_AgeBoundariesEarnNoBonus(t *testing.T) {
	for _, age := range []int{18, 60} {
		b := Evaluate(scheme(nil), profile(func(p *models.Profile) { p.Age = age }))
		assert.Equal(t, 25.0, b.Age, "age %d", age)
	}
}

func TestEvaluate_IncomeAtMaximumEarnsNoBonus(t *testing.T) {
	b := Evaluate(scheme(nil), profile(func(p *models.Profile) { p.AnnualIncome = 200000 }))
	assert.Equal(t, 30.0, b.Income)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0, normalize(-5))
	assert.Equal(t, 100, normalize(150))
	assert.Equal(t, 99, normalize(99.5))
	assert.Equal(t, 30, normalize(30))
}

// Integral totals must come back unchanged. Dividing by 100 first would
// floor 57 to 56 and 29 to 28 under float64 rounding.
func TestNormalize_IntegralTotalsAreExact(t *testing.T) {
	for _, total := range []float64{29, 57, 58} {
		assert.Equal(t, int(total), normalize(total))
	}

	s := scheme(func(s *models.Scheme) {
		s.MinAge, s.MaxAge = 0, 10
		s.State, s.Level = "Goa", models.LevelState
		s.Category = "Housing"
	})
	p := profile(func(p *models.Profile) {
		p.Age = 2
		p.AnnualIncome = 200000
		p.Category = "Unlisted"
	})

	assert.InDelta(t, 57.0, Evaluate(s, p).Total(), 1e-9)
	assert.Equal(t, 57, Score(s, p))
}

func TestIsRelated_Directional(t *testing.T) {
	assert.True(t, IsRelated("Agriculture", "Skill Development"))
	assert.False(t, IsRelated("Skill Development", "Agriculture"))
	assert.True(t, IsRelated("Food Security", "Health"))
	assert.False(t, IsRelated("Health", "Food Security"))
	assert.False(t, IsRelated("Unknown", "Health"))
}

func TestRelatedCategories_ReturnsCopy(t *testing.T) {
	related := RelatedCategories("Housing")
	related[0] = "Mutated"

	assert.Equal(t, []string{"Social Security"}, RelatedCategories("Housing"))
	assert.Empty(t, RelatedCategories("Unknown"))
}
