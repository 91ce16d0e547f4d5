package eligibility

import "scheme-assist/internal/models"

// Stats summarises the active schemes of a catalog.
func Stats(catalog *models.Catalog) models.SchemeStats {
	stats := models.SchemeStats{
		CategoryCounts: map[string]int{},
		LevelCounts: map[string]int{
			models.LevelCentral: 0,
			models.LevelState:   0,
		},
	}

	for _, s := range catalog.Schemes {
		if !s.IsActive {
			continue
		}
		stats.TotalSchemes++
		stats.CategoryCounts[s.Category]++
		stats.LevelCounts[s.Level]++
		if s.IsNew {
			stats.NewSchemes++
		}
		if s.Deadline != "" {
			stats.SchemesWithDeadlines++
		}
	}

	return stats
}
