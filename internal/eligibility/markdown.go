package eligibility

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"scheme-assist/internal/models"
)

// DefaultMarkdownLimit caps how many recommendations RenderMarkdown prints.
const DefaultMarkdownLimit = 20

var disclaimer = []string{
	"This recommendation is generated by an automated system based on the provided data and eligibility criteria.",
	"Actual eligibility may vary based on additional documentation and verification requirements.",
	"Please visit the official scheme portals or nearest government office for final confirmation.",
	"The dataset is updated periodically and may not reflect the most recent changes.",
}

// RenderMarkdown formats report as a human readable document listing at most
// limit recommendations. A non-positive limit means DefaultMarkdownLimit.
func RenderMarkdown(report *models.Report, limit int) string {
	if limit <= 0 {
		limit = DefaultMarkdownLimit
	}

	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}
	rule := func() {
		line("---")
		line("")
	}

	line("# SchemeAssist - Recommendation Report")
	line("")
	line("**Generated:** %s", displayTime(report.GeneratedAt))
	line("")
	rule()

	p := report.UserProfile
	line("## User Profile Summary")
	line("")
	line("| Field | Value |")
	line("|-------|-------|")
	line("| State | %s |", p.State)
	line("| Age | %d years |", p.Age)
	line("| Annual Income | ₹%s |", FormatINR(p.AnnualIncome))
	line("| Category of Interest | %s |", p.Category)
	line("")
	rule()

	line("## Analysis Summary")
	line("")
	line("- **Total Schemes Analyzed:** %d", report.TotalSchemesAnalyzed)
	line("- **Eligible Schemes Found:** %d", report.EligibleSchemesCount)
	line("")
	line("> %s", report.Summary)
	line("")
	rule()

	line("## Recommended Schemes")
	line("")

	for i, rec := range report.Recommendations {
		if i >= limit {
			break
		}
		s := rec.Scheme
		line("### %d. %s", i+1, s.SchemeName)
		line("")
		line("**Eligibility Score:** %d%%", rec.EligibilityScore)
		line("")
		line("| Detail | Information |")
		line("|--------|-------------|")
		line("| Scheme ID | %s |", s.SchemeID)
		line("| Level | %s |", s.Level)
		line("| Category | %s |", s.Category)
		line("| Target Group | %s |", s.TargetGroup)
		line("| Benefits | %s |", s.Benefits)
		line("| Last Updated | %s |", s.LastUpdated)
		if s.Deadline != "" {
			line("| Deadline | %s |", s.Deadline)
		}
		line("")
		line("**Why You Are Eligible:**")
		for _, reason := range rec.Reasons {
			line("- %s", reason)
		}
		line("")
		if len(rec.Alerts) > 0 {
			line("**Alerts:**")
			for _, a := range rec.Alerts {
				line("- %s %s", priorityIcon(a.Priority), a.Message)
			}
			line("")
		}
		rule()
	}

	line("## Disclaimer")
	line("")
	for _, d := range disclaimer {
		line("> %s", d)
	}
	line("")
	line("---")
	line("")
	b.WriteString("*Generated by SchemeAssist*")

	return b.String()
}

func priorityIcon(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "🔴"
	case models.PriorityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

func displayTime(rfc3339 string) string {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return rfc3339
	}
	return t.UTC().Format("2 Jan 2006, 15:04 MST")
}

// FormatINR renders amount with Indian digit grouping (12,34,567). Fractions
// are kept to two places with trailing zeros dropped.
func FormatINR(amount float64) string {
	p := message.NewPrinter(language.MustParse("en-IN"))
	return p.Sprint(number.Decimal(amount, number.MaxFractionDigits(2)))
}
