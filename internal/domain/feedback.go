package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Sentiment string

const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
)

// Sentiments is the fixed iteration order used by aggregation and reports.
var Sentiments = []Sentiment{Positive, Neutral, Negative}

func (s Sentiment) Valid() bool {
	switch s {
	case Positive, Neutral, Negative:
		return true
	}
	return false
}

// ParseSentiment maps a stored label back to the enum; anything else is neutral.
func ParseSentiment(s string) Sentiment {
	v := Sentiment(strings.ToLower(strings.TrimSpace(s)))
	if v.Valid() {
		return v
	}
	return Neutral
}

type FeedbackRecord struct {
	ID             int64
	DepartmentName string
	Date           time.Time // zero when the source row had no date
	FeedbackText   *string   // nil when the source value was NULL
}

// Text returns the raw feedback with NULL coerced to the empty string.
func (r FeedbackRecord) Text() string {
	if r.FeedbackText == nil {
		return ""
	}
	return *r.FeedbackText
}

func StringPtr(s string) *string { return &s }

// AnalyzedRecord is a feedback record after cleaning, classification and
// keyword extraction. CleanFeedback is never NULL.
type AnalyzedRecord struct {
	FeedbackRecord
	CleanFeedback  string
	SentimentLabel Sentiment
	Keywords       KeywordList
}

type KeywordSummaryRow struct {
	Department     string
	SentimentLabel Sentiment
	Keyword        string
	Count          int
}

// KeywordList is serialized as a JSON array of strings wherever it leaves
// process memory (database column, predictions CSV).
type KeywordList []string

func (k KeywordList) Encode() string {
	if len(k) == 0 {
		return "[]"
	}
	data, err := json.Marshal([]string(k))
	if err != nil {
		// []string always marshals
		return "[]"
	}
	return string(data)
}

func ParseKeywordList(s string) (KeywordList, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return KeywordList{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("parsing keyword list %q: %w", truncateForError(s), err)
	}
	if out == nil {
		out = []string{}
	}
	return KeywordList(out), nil
}

func truncateForError(s string) string {
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
