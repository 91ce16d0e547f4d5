// internal/models/scheme.go
package models

// Sentinel values used by catalog entries and profiles.
const (
	StateAll      = "All"
	StateAllIndia = "All India"

	LevelCentral = "Central"
	LevelState   = "State"
)

// Scheme is one government assistance program in the catalog.
type Scheme struct {
	SchemeID    string `json:"scheme_id"`
	SchemeName  string `json:"scheme_name"`
	Description string `json:"description,omitempty"`
	Level       string `json:"level"`
	State       string `json:"state"`
	Category    string `json:"category"`
	MinAge      int    `json:"min_age"`
	MaxAge      int    `json:"max_age"`
	MinIncome   int64  `json:"min_income"`
	MaxIncome   int64  `json:"max_income"`
	TargetGroup string `json:"target_group"`
	Benefits    string `json:"benefits"`
	IsActive    bool   `json:"is_active"`
	LastUpdated string `json:"last_updated"`
	Deadline    string `json:"deadline,omitempty"`
	IsNew       bool   `json:"is_new,omitempty"`
}

// Catalog is the full document served by a catalog provider.
type Catalog struct {
	Schemes    []Scheme `json:"schemes"`
	Categories []string `json:"categories"`
	States     []string `json:"states"`
}

// SchemeStats summarises the active part of a catalog.
type SchemeStats struct {
	TotalSchemes         int            `json:"totalSchemes"`
	CategoryCounts       map[string]int `json:"categoryCounts"`
	LevelCounts          map[string]int `json:"levelCounts"`
	NewSchemes           int            `json:"newSchemes"`
	SchemesWithDeadlines int            `json:"schemesWithDeadlines"`
}
