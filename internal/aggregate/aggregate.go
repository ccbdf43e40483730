// Package aggregate rolls analyzed feedback up into per-department keyword
// counts and label distributions.
package aggregate

import (
	"slices"
	"strings"

	"feedbackinsight/internal/domain"
	"feedbackinsight/internal/keywords"
)

// Summarize counts keyword occurrences per (sentiment, department). Rows are
// grouped by sentiment in positive, neutral, negative order; departments and
// keywords appear in the order they are first seen. Records without a
// department belong to no group and are skipped. Fillers are filtered again
// here so records persisted by older runs cannot leak them.
func Summarize(records []domain.AnalyzedRecord, fillers *keywords.FillerSet) []domain.KeywordSummaryRow {
	if fillers == nil {
		fillers = keywords.NewFillerSet(nil)
	}

	var rows []domain.KeywordSummaryRow
	for _, sentiment := range domain.Sentiments {
		var departments []string
		byDept := make(map[string][]string)
		for _, r := range records {
			if r.SentimentLabel != sentiment || r.DepartmentName == "" {
				continue
			}
			if _, seen := byDept[r.DepartmentName]; !seen {
				departments = append(departments, r.DepartmentName)
				byDept[r.DepartmentName] = []string{}
			}
			byDept[r.DepartmentName] = append(byDept[r.DepartmentName], r.Keywords...)
		}

		for _, dept := range departments {
			var order []string
			counts := make(map[string]int)
			for _, kw := range fillers.Filter(byDept[dept]) {
				if _, seen := counts[kw]; !seen {
					order = append(order, kw)
				}
				counts[kw]++
			}
			for _, kw := range order {
				rows = append(rows, domain.KeywordSummaryRow{
					Department:     dept,
					SentimentLabel: sentiment,
					Keyword:        kw,
					Count:          counts[kw],
				})
			}
		}
	}
	return rows
}

// Distribution counts records per sentiment label. All three labels are
// present in the result, zero when unused.
func Distribution(records []domain.AnalyzedRecord) map[domain.Sentiment]int {
	dist := make(map[domain.Sentiment]int, len(domain.Sentiments))
	for _, s := range domain.Sentiments {
		dist[s] = 0
	}
	for _, r := range records {
		dist[r.SentimentLabel]++
	}
	return dist
}

// TopKeywords returns the n most frequent keywords for the given department
// and sentiment, count descending then keyword ascending. An empty department
// matches all departments, summing their counts.
func TopKeywords(rows []domain.KeywordSummaryRow, department string, sentiment domain.Sentiment, n int) []domain.KeywordSummaryRow {
	counts := make(map[string]int)
	for _, r := range rows {
		if r.SentimentLabel != sentiment {
			continue
		}
		if department != "" && r.Department != department {
			continue
		}
		counts[r.Keyword] += r.Count
	}

	out := make([]domain.KeywordSummaryRow, 0, len(counts))
	for kw, c := range counts {
		out = append(out, domain.KeywordSummaryRow{Department: department, SentimentLabel: sentiment, Keyword: kw, Count: c})
	}
	slices.SortFunc(out, func(a, b domain.KeywordSummaryRow) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Keyword, b.Keyword)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
