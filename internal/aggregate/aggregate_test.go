package aggregate

import (
	"testing"

	"feedbackinsight/internal/domain"
	"feedbackinsight/internal/keywords"
)

func record(dept string, s domain.Sentiment, kws ...string) domain.AnalyzedRecord {
	return domain.AnalyzedRecord{
		FeedbackRecord: domain.FeedbackRecord{DepartmentName: dept},
		SentimentLabel: s,
		Keywords:       domain.KeywordList(kws),
	}
}

func TestSummarizeExample(t *testing.T) {
	records := []domain.AnalyzedRecord{
		record("A", domain.Positive, "staff", "clean"),
		record("A", domain.Positive, "staff"),
		record("B", domain.Negative, "queue"),
	}
	got := Summarize(records, nil)
	want := []domain.KeywordSummaryRow{
		{Department: "A", SentimentLabel: domain.Positive, Keyword: "staff", Count: 2},
		{Department: "A", SentimentLabel: domain.Positive, Keyword: "clean", Count: 1},
		{Department: "B", SentimentLabel: domain.Negative, Keyword: "queue", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("Summarize returned %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSummarizeSkipsRecordsWithoutDepartment(t *testing.T) {
	records := []domain.AnalyzedRecord{
		record("", domain.Positive, "staff"),
		record("A", domain.Positive, "staff"),
		record("", domain.Negative, "queue"),
	}
	got := Summarize(records, nil)
	want := []domain.KeywordSummaryRow{
		{Department: "A", SentimentLabel: domain.Positive, Keyword: "staff", Count: 1},
	}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("Summarize = %+v, want %+v", got, want)
	}
	if dist := Distribution(records); dist[domain.Positive] != 2 || dist[domain.Negative] != 1 {
		t.Fatalf("Distribution should still count records without a department: %v", dist)
	}
}

func TestSummarizeFiltersFillers(t *testing.T) {
	records := []domain.AnalyzedRecord{
		record("A", domain.Neutral, "like", "Um ", "wifi", "you know"),
	}
	got := Summarize(records, keywords.NewFillerSet([]string{"you know"}))
	if len(got) != 1 || got[0].Keyword != "wifi" {
		t.Fatalf("expected only wifi, got %+v", got)
	}
}

func TestSummarizeNoZeroRows(t *testing.T) {
	records := []domain.AnalyzedRecord{
		record("A", domain.Positive),
		record("B", domain.Negative, "like"),
	}
	if got := Summarize(records, nil); len(got) != 0 {
		t.Fatalf("expected no rows, got %+v", got)
	}
	if got := Summarize(nil, nil); len(got) != 0 {
		t.Fatalf("expected no rows for empty input, got %+v", got)
	}
}

func TestSummarizeCountsMatchOccurrences(t *testing.T) {
	fillers := keywords.NewFillerSet(nil)
	records := []domain.AnalyzedRecord{
		record("Library", domain.Positive, "quiet", "staff", "like"),
		record("Library", domain.Negative, "wifi", "wifi slow", "uh"),
		record("Canteen", domain.Positive, "food", "staff"),
		record("Library", domain.Positive, "quiet", "book"),
		record("Canteen", domain.Neutral),
		record("Canteen", domain.Positive, "food", "um", "price"),
		record("Library", domain.Negative, "wifi"),
	}
	rows := Summarize(records, fillers)

	type key struct {
		dept string
		s    domain.Sentiment
	}
	want := make(map[key]int)
	for _, r := range records {
		want[key{r.DepartmentName, r.SentimentLabel}] += len(fillers.Filter(r.Keywords))
	}
	got := make(map[key]int)
	for _, row := range rows {
		if row.Count <= 0 {
			t.Fatalf("non-positive count in %+v", row)
		}
		got[key{row.Department, row.SentimentLabel}] += row.Count
	}
	for k, n := range want {
		if got[k] != n {
			t.Fatalf("%v: summed counts %d, want %d", k, got[k], n)
		}
	}

	again := Summarize(records, fillers)
	for i := range rows {
		if rows[i] != again[i] {
			t.Fatalf("Summarize not stable at row %d: %+v vs %+v", i, rows[i], again[i])
		}
	}

	if rows[0].SentimentLabel != domain.Positive || rows[len(rows)-1].SentimentLabel != domain.Negative {
		t.Fatalf("rows not grouped positive..negative: %+v", rows)
	}
}

func TestDistribution(t *testing.T) {
	records := []domain.AnalyzedRecord{
		record("A", domain.Positive),
		record("A", domain.Positive),
		record("B", domain.Negative),
	}
	got := Distribution(records)
	if got[domain.Positive] != 2 || got[domain.Negative] != 1 || got[domain.Neutral] != 0 {
		t.Fatalf("Distribution = %v", got)
	}
	if _, ok := got[domain.Neutral]; !ok {
		t.Fatal("neutral should be present with zero count")
	}
}

func TestTopKeywords(t *testing.T) {
	rows := []domain.KeywordSummaryRow{
		{Department: "A", SentimentLabel: domain.Positive, Keyword: "staff", Count: 2},
		{Department: "A", SentimentLabel: domain.Positive, Keyword: "clean", Count: 2},
		{Department: "B", SentimentLabel: domain.Positive, Keyword: "staff", Count: 3},
		{Department: "A", SentimentLabel: domain.Negative, Keyword: "queue", Count: 9},
		{Department: "A", SentimentLabel: domain.Positive, Keyword: "room", Count: 1},
	}

	got := TopKeywords(rows, "A", domain.Positive, 2)
	if len(got) != 2 || got[0].Keyword != "clean" || got[1].Keyword != "staff" {
		t.Fatalf("TopKeywords(A) = %+v", got)
	}

	all := TopKeywords(rows, "", domain.Positive, 0)
	if len(all) != 3 || all[0].Keyword != "staff" || all[0].Count != 5 {
		t.Fatalf("TopKeywords(all) = %+v", all)
	}
}
