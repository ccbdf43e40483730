package slackbot

import (
	"fmt"
	"log"
	"strings"

	"feedbackinsight/internal/aggregate"
	"feedbackinsight/internal/domain"

	"github.com/slack-go/slack"
)

const topKeywordsInSummary = 3

type RunSummary struct {
	RunID        string
	Records      int
	Distribution map[domain.Sentiment]int
	Summary      []domain.KeywordSummaryRow
	Accuracy     *domain.AccuracyReport
	ReportPath   string
}

func FormatRunSummary(s RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Feedback insight run* `%s`: %d records analyzed\n", s.RunID, s.Records)

	parts := make([]string, 0, len(domain.Sentiments))
	for _, label := range domain.Sentiments {
		n := s.Distribution[label]
		share := 0.0
		if s.Records > 0 {
			share = float64(n) / float64(s.Records) * 100
		}
		parts = append(parts, fmt.Sprintf("%s %d (%.0f%%)", label, n, share))
	}
	b.WriteString(strings.Join(parts, " | "))
	b.WriteString("\n")

	for _, label := range domain.Sentiments {
		top := aggregate.TopKeywords(s.Summary, "", label, topKeywordsInSummary)
		if len(top) == 0 {
			continue
		}
		words := make([]string, len(top))
		for i, row := range top {
			words[i] = fmt.Sprintf("%s (%d)", row.Keyword, row.Count)
		}
		fmt.Fprintf(&b, "• Top %s keywords: %s\n", label, strings.Join(words, ", "))
	}

	if s.Accuracy != nil {
		fmt.Fprintf(&b, "Accuracy: %.2f overall on %d rows\n", s.Accuracy.OverallAccuracy, s.Accuracy.Compared)
	}
	if s.ReportPath != "" {
		fmt.Fprintf(&b, "Report: `%s`\n", s.ReportPath)
	}
	return strings.TrimRight(b.String(), "\n")
}

// PostRunSummary posts the formatted summary to channelID. A nil client or
// empty channel is a no-op.
func PostRunSummary(api *slack.Client, channelID string, s RunSummary) error {
	if api == nil || strings.TrimSpace(channelID) == "" {
		return nil
	}
	_, _, err := api.PostMessage(channelID, slack.MsgOptionText(FormatRunSummary(s), false))
	if err != nil {
		log.Printf("slack run summary error channel=%s run=%s: %v", channelID, s.RunID, err)
		return fmt.Errorf("post run summary: %w", err)
	}
	log.Printf("slack run summary posted channel=%s run=%s", channelID, s.RunID)
	return nil
}
