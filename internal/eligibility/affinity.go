package eligibility

// relatedCategories maps a profile category to the scheme categories that earn
// partial credit. Entries are directional: A listing B says nothing about B.
var relatedCategories = map[string][]string{
	"Agriculture":       {"Business", "Skill Development"},
	"Education":         {"Skill Development", "Women Welfare"},
	"Health":            {"Women Welfare", "Senior Citizen"},
	"Housing":           {"Social Security"},
	"Business":          {"Agriculture", "Skill Development"},
	"Women Welfare":     {"Education", "Health", "Housing"},
	"Senior Citizen":    {"Health", "Social Security"},
	"Skill Development": {"Education", "Business"},
	"Social Security":   {"Senior Citizen", "Housing"},
	"Food Security":     {"Health", "Social Security"},
}

// RelatedCategories returns a copy of the scheme categories related to profileCategory.
func RelatedCategories(profileCategory string) []string {
	related := relatedCategories[profileCategory]
	out := make([]string, len(related))
	copy(out, related)
	return out
}

// IsRelated reports whether schemeCategory earns partial credit for a profile
// interested in profileCategory.
func IsRelated(profileCategory, schemeCategory string) bool {
	for _, c := range relatedCategories[profileCategory] {
		if c == schemeCategory {
			return true
		}
	}
	return false
}
