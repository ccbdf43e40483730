// Package report renders a run summary as markdown and writes it to disk.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"feedbackinsight/internal/aggregate"
	"feedbackinsight/internal/domain"
)

const topKeywordsPerGroup = 5

type Input struct {
	RunID        string
	GeneratedAt  time.Time
	Model        string
	Ranker       string
	Records      int
	Distribution map[domain.Sentiment]int
	Summary      []domain.KeywordSummaryRow
	Accuracy     *domain.AccuracyReport
}

func Build(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Feedback insight report %s\n\n", in.GeneratedAt.Format("2006-01-02"))
	if in.RunID != "" {
		fmt.Fprintf(&b, "- Run: `%s`\n", in.RunID)
	}
	fmt.Fprintf(&b, "- Generated: %s\n", in.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Records analyzed: %d\n", in.Records)
	if in.Model != "" {
		fmt.Fprintf(&b, "- Sentiment model: %s\n", in.Model)
	}
	if in.Ranker != "" {
		fmt.Fprintf(&b, "- Keyword ranker: %s\n", in.Ranker)
	}

	b.WriteString("\n## Sentiment distribution\n\n")
	b.WriteString("| Sentiment | Count | Share |\n|---|---:|---:|\n")
	for _, s := range domain.Sentiments {
		n := in.Distribution[s]
		share := 0.0
		if in.Records > 0 {
			share = float64(n) / float64(in.Records) * 100
		}
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", s, n, share)
	}

	b.WriteString("\n## Top keywords by department\n")
	departments := departmentsOf(in.Summary)
	if len(departments) == 0 {
		b.WriteString("\n_No keywords extracted._\n")
	}
	for _, dept := range departments {
		name := dept
		if name == "" {
			name = "(no department)"
		}
		fmt.Fprintf(&b, "\n### %s\n\n", name)
		for _, s := range domain.Sentiments {
			top := aggregate.TopKeywords(in.Summary, dept, s, topKeywordsPerGroup)
			if len(top) == 0 {
				continue
			}
			parts := make([]string, len(top))
			for i, row := range top {
				parts[i] = fmt.Sprintf("%s (%d)", row.Keyword, row.Count)
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", s, strings.Join(parts, ", "))
		}
	}

	if in.Accuracy != nil {
		b.WriteString("\n## Accuracy\n\n```\n")
		b.WriteString(in.Accuracy.String())
		b.WriteString("```\n")
	}
	return b.String()
}

// departmentsOf lists departments in first-appearance order.
func departmentsOf(rows []domain.KeywordSummaryRow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if !seen[r.Department] {
			seen[r.Department] = true
			out = append(out, r.Department)
		}
	}
	return out
}

func WriteFile(content, outputDir string, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("feedback_insight_%s.md", generatedAt.Format("20060102_150405"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(content), 0644)
}
