package llm

import (
	"context"
	"fmt"
	"strings"

	"osrs-toolkit/pkg/market"
)

const commentarySystemPrompt = `You are a Grand Exchange trading assistant. You are given a ranked list of
market opportunities. Write a short, concrete commentary: which entries look
strongest, which look risky, and anything unusual about prices or volumes.
Plain prose, no more than three paragraphs.`

// reserveTokens is context space held back for the system prompt, the
// model's reply and the prompt framing around the table.
const reserveTokens = 1500

// BuildReportPrompt renders the ranked list as a prompt table, dropping
// trailing rows until the whole prompt fits the model context.
func BuildReportPrompt(report *market.Report, numCtx int) string {
	budget := numCtx - reserveTokens
	if budget < 0 {
		budget = 0
	}

	rows := make([]string, 0, len(report.Items))
	for i, opp := range report.Items {
		rows = append(rows, fmt.Sprintf("%d. %s: buy %d gp, sell %d gp, %d gp/unit (%.1f%% ROI), ~%.0f gp/h, limit %d, trend %s",
			i+1, opp.Name, opp.BuyPrice, opp.SellPrice, opp.ProfitPerUnit,
			opp.ROIPercent, opp.HourlyProfitEstimate, opp.TradeLimit, opp.Trend))
	}

	for len(rows) > 0 {
		prompt := fmt.Sprintf("Strategy: %s\n%s\n\nRanked opportunities:\n%s",
			report.Strategy, report.Summary, strings.Join(rows, "\n"))
		if CountTokens(prompt) <= budget {
			return prompt
		}
		rows = rows[:len(rows)-1]
	}

	return fmt.Sprintf("Strategy: %s\n%s", report.Strategy, report.Summary)
}

// Commentary generates market commentary for a report. The returned text
// has any model thinking tags stripped.
func Commentary(ctx context.Context, client *Client, config ModelConfig, report *market.Report) (string, error) {
	prompt := BuildReportPrompt(report, config.Options.NumCtx)

	resp, err := client.Generate(ctx, config, commentarySystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("generating commentary: %w", err)
	}

	return RemoveThinkingTags(resp.Response), nil
}
