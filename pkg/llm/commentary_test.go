package llm

import (
	"fmt"
	"strings"
	"testing"

	"osrs-toolkit/pkg/market"
)

func TestRemoveThinkingTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no tags", "The whip flip looks solid.", "The whip flip looks solid."},
		{"single block", "<think>reasoning here</think>Buy the whip.", "Buy the whip."},
		{"multiline block", "<think>line one\nline two</think>\nBuy the whip.", "Buy the whip."},
		{"case insensitive", "<THINK>hmm</THINK>Result.", "Result."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoveThinkingTags(tt.input); got != tt.expected {
				t.Errorf("RemoveThinkingTags(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCountTokensNonZero(t *testing.T) {
	if got := CountTokens("Buy low, sell high, pay the tax."); got == 0 {
		t.Error("CountTokens returned 0 for non-empty content")
	}
	if got := fallbackTokenCount("x"); got == 0 {
		t.Error("fallbackTokenCount returned 0 for non-empty content")
	}
}

func TestBuildReportPromptFitsBudget(t *testing.T) {
	report := &market.Report{
		Strategy: market.StrategyFlip,
		Summary:  "Scanned 4000 items, 300 candidates. Top: Abyssal whip",
	}
	for i := 0; i < 300; i++ {
		report.Items = append(report.Items, market.Opportunity{
			Name:                 fmt.Sprintf("Item number %d with a fairly long name", i),
			BuyPrice:             100_000 + i,
			SellPrice:            110_000 + i,
			ProfitPerUnit:        9000,
			ROIPercent:           9,
			HourlyProfitEstimate: 500_000,
			TradeLimit:           70,
			Trend:                market.TrendStable,
		})
	}

	prompt := BuildReportPrompt(report, 2000)

	if !strings.Contains(prompt, "Strategy: flip") {
		t.Error("prompt missing strategy line")
	}
	// 2000 ctx minus the reserve leaves 500 tokens; the full table is far
	// bigger, so rows must have been dropped
	if strings.Contains(prompt, "Item number 299") {
		t.Error("prompt was not truncated to the token budget")
	}
	if got := CountTokens(prompt); got > 500 {
		t.Errorf("prompt is %d tokens, want <= 500", got)
	}
}

func TestBuildReportPromptKeepsSummaryWhenNothingFits(t *testing.T) {
	report := &market.Report{
		Strategy: market.StrategyAlch,
		Summary:  "Scanned 10 items, 1 candidates. Top: Rune battleaxe",
		Items:    []market.Opportunity{{Name: "Rune battleaxe"}},
	}

	prompt := BuildReportPrompt(report, 0)
	if !strings.Contains(prompt, report.Summary) {
		t.Error("prompt missing summary fallback")
	}
}
