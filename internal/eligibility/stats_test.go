package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scheme-assist/internal/models"
)

func TestStats(t *testing.T) {
	catalog := &models.Catalog{Schemes: []models.Scheme{
		scheme(func(s *models.Scheme) { s.IsNew = true }),
		scheme(func(s *models.Scheme) { s.Category = "Health"; s.Deadline = "2025-01-31" }),
		scheme(func(s *models.Scheme) { s.Level = models.LevelState; s.State = "Kerala" }),
		scheme(func(s *models.Scheme) { s.IsActive = false; s.IsNew = true; s.Category = "Housing" }),
	}}

	got := Stats(catalog)

	assert.Equal(t, models.SchemeStats{
		TotalSchemes:         3,
		CategoryCounts:       map[string]int{"Agriculture": 2, "Health": 1},
		LevelCounts:          map[string]int{"Central": 2, "State": 1},
		NewSchemes:           1,
		SchemesWithDeadlines: 1,
	}, got)
}

func TestStats_EmptyCatalogKeepsLevelKeys(t *testing.T) {
	got := Stats(&models.Catalog{})

	assert.Equal(t, 0, got.TotalSchemes)
	assert.Equal(t, map[string]int{"Central": 0, "State": 0}, got.LevelCounts)
	assert.Empty(t, got.CategoryCounts)
}
