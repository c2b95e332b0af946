package report

import (
	"fmt"
	"strings"
	"time"

	"osrs-toolkit/pkg/market"
)

// Formatter renders results for the terminal and for Discord
type Formatter struct{}

// NewFormatter creates a new formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatForTerminal renders a full result for terminal output
func (f *Formatter) FormatForTerminal(result *Result) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("\nJob: %s\n", result.JobName))
	output.WriteString(strings.Repeat("=", 60) + "\n")

	if !result.Success {
		output.WriteString(fmt.Sprintf("Job failed: %v\n", result.Error))
		return output.String()
	}

	output.WriteString(fmt.Sprintf("Duration: %v | %s\n",
		result.Duration.Truncate(time.Millisecond), result.Report.Summary))
	if result.Description != "" {
		output.WriteString(fmt.Sprintf("Description: %s\n", result.Description))
	}
	output.WriteString("\n")
	output.WriteString(f.FormatRankedList(result.Report))

	if result.Commentary != "" {
		output.WriteString("\nCommentary:\n")
		output.WriteString(strings.Repeat("-", 60) + "\n")
		output.WriteString(result.Commentary)
		output.WriteString("\n")
	}

	return output.String()
}

// FormatRankedList renders the opportunity table, one line per item
func (f *Formatter) FormatRankedList(report *market.Report) string {
	if len(report.Items) == 0 {
		return "No opportunities found.\n"
	}

	var output strings.Builder
	for i, opp := range report.Items {
		output.WriteString(fmt.Sprintf("%2d. %-30s buy %s  sell %s  %s/unit  %.1f%% ROI  ~%s/h  %s\n",
			i+1, truncateName(opp.Name, 30),
			FormatGP(opp.BuyPrice), FormatGP(opp.SellPrice),
			FormatGP(opp.ProfitPerUnit), opp.ROIPercent,
			FormatGP(int(opp.HourlyProfitEstimate)), opp.Trend))
	}
	return output.String()
}

// FormatForDiscord renders a result as Discord markdown
func (f *Formatter) FormatForDiscord(result *Result) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("**%s** - %s\n", result.JobName, result.Report.Summary))
	output.WriteString("```\n")
	output.WriteString(f.FormatRankedList(result.Report))
	output.WriteString("```")

	if result.Commentary != "" {
		output.WriteString("\n")
		output.WriteString(result.Commentary)
	}

	return output.String()
}

// FormatGP renders a gp amount with k/m/b suffixes the way players write
// them.
func FormatGP(amount int) string {
	negative := amount < 0
	abs := amount
	if negative {
		abs = -abs
	}

	var s string
	switch {
	case abs >= 1_000_000_000:
		s = fmt.Sprintf("%.2fb", float64(abs)/1_000_000_000)
	case abs >= 1_000_000:
		s = fmt.Sprintf("%.2fm", float64(abs)/1_000_000)
	case abs >= 10_000:
		s = fmt.Sprintf("%.1fk", float64(abs)/1_000)
	default:
		s = fmt.Sprintf("%d", abs)
	}

	if negative {
		return "-" + s
	}
	return s
}

func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	return name[:max-1] + "…"
}
