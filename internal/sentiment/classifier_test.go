package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"feedbackinsight/internal/domain"
)

type fakeModel struct {
	mu      sync.Mutex
	calls   [][]string
	labelOf func(text string) string
	err     error
	short   bool
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Predict(_ context.Context, texts []string) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), texts...))
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		out = append(out, f.labelOf(t))
	}
	if f.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func TestLabelFor(t *testing.T) {
	tests := map[string]domain.Sentiment{
		"LABEL_0":   domain.Negative,
		"LABEL_1":   domain.Neutral,
		"LABEL_2":   domain.Positive,
		" label_2 ": domain.Positive,
		"Positive":  domain.Positive,
		"negative":  domain.Negative,
		"LABEL_3":   domain.Neutral,
		"":          domain.Neutral,
		"joy":       domain.Neutral,
	}
	for raw, want := range tests {
		if got := LabelFor(raw); got != want {
			t.Fatalf("LabelFor(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestClassifyAlwaysCanonical(t *testing.T) {
	model := &fakeModel{labelOf: func(text string) string {
		switch {
		case text == "":
			return "???"
		case strings.Contains(text, "good"):
			return "LABEL_2"
		case strings.Contains(text, "bad"):
			return "LABEL_0"
		}
		return "something else"
	}}
	c := New(model, Options{})
	for _, in := range []string{"", "good staff", "bad food", "room"} {
		got := c.Classify(context.Background(), in)
		if !got.Valid() {
			t.Fatalf("Classify(%q) = %q, not a canonical label", in, got)
		}
	}
	if got := c.Classify(context.Background(), ""); got != domain.Neutral {
		t.Fatalf("empty text with unknown label = %q, want neutral", got)
	}
}

func TestClassifyTruncatesInput(t *testing.T) {
	model := &fakeModel{labelOf: func(string) string { return "LABEL_1" }}
	c := New(model, Options{MaxInputChars: 10})
	c.Classify(context.Background(), strings.Repeat("a", 50))
	if got := len(model.calls[0][0]); got != 10 {
		t.Fatalf("model received %d chars, want 10", got)
	}

	model = &fakeModel{labelOf: func(string) string { return "LABEL_1" }}
	c = New(model, Options{})
	c.Classify(context.Background(), strings.Repeat("b", 600))
	if got := len(model.calls[0][0]); got != DefaultMaxInputChars {
		t.Fatalf("model received %d chars, want %d", got, DefaultMaxInputChars)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Fatalf("Truncate = %q, want hé", got)
	}
	if got := Truncate("abc", 5); got != "abc" {
		t.Fatalf("Truncate short = %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("Truncate zero limit = %q", got)
	}
}

func TestClassifyAllOrderPreservedAcrossBatches(t *testing.T) {
	labels := []string{"LABEL_0", "LABEL_1", "LABEL_2"}
	model := &fakeModel{labelOf: func(text string) string {
		var n int
		fmt.Sscanf(text, "item%d", &n)
		return labels[n%3]
	}}

	var texts []string
	for i := 0; i < 23; i++ {
		texts = append(texts, fmt.Sprintf("item%d", i))
	}

	sequential := New(model, Options{BatchSize: 1}).ClassifyAll(context.Background(), texts)
	batched := New(model, Options{BatchSize: 5, Concurrency: 4}).ClassifyAll(context.Background(), texts)

	if len(batched) != len(texts) {
		t.Fatalf("got %d labels, want %d", len(batched), len(texts))
	}
	for i := range texts {
		want := LabelFor(labels[i%3])
		if sequential[i] != want || batched[i] != want {
			t.Fatalf("item %d: sequential=%q batched=%q want=%q", i, sequential[i], batched[i], want)
		}
	}
}

func TestClassifyAllDegradesOnModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("boom")}
	got := New(model, Options{BatchSize: 2}).ClassifyAll(context.Background(), []string{"a", "b", "c"})
	for i, s := range got {
		if s != domain.Neutral {
			t.Fatalf("item %d = %q, want neutral on model error", i, s)
		}
	}
}

func TestClassifyAllShortReplyDefaultsNeutral(t *testing.T) {
	model := &fakeModel{short: true, labelOf: func(string) string { return "LABEL_2" }}
	got := New(model, Options{BatchSize: 3}).ClassifyAll(context.Background(), []string{"a", "b", "c"})
	want := []domain.Sentiment{domain.Positive, domain.Positive, domain.Neutral}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClassifyAllEmpty(t *testing.T) {
	model := &fakeModel{labelOf: func(string) string { return "LABEL_2" }}
	if got := New(model, Options{}).ClassifyAll(context.Background(), nil); len(got) != 0 {
		t.Fatalf("expected no labels, got %v", got)
	}
	if len(model.calls) != 0 {
		t.Fatalf("model should not be called for empty input")
	}
}

func TestBatchConcurrencyLimit(t *testing.T) {
	tests := []struct {
		total, configured, want int
	}{
		{total: 0, configured: 4, want: 1},
		{total: 1, configured: 4, want: 1},
		{total: 2, configured: 4, want: 2},
		{total: 10, configured: 4, want: 4},
		{total: 10, configured: 16, want: 4},
		{total: 10, configured: 1, want: 1},
	}
	for _, tt := range tests {
		if got := batchConcurrencyLimit(tt.total, tt.configured); got != tt.want {
			t.Fatalf("batchConcurrencyLimit(%d, %d) = %d, want %d", tt.total, tt.configured, got, tt.want)
		}
	}
}

func TestLexiconModel(t *testing.T) {
	m := NewLexiconModel(map[string]int{"Queue": -2})
	tests := []struct {
		text string
		want domain.Sentiment
	}{
		{text: "great teacher helpful staff", want: domain.Positive},
		{text: "rude staff slow service", want: domain.Negative},
		{text: "not good", want: domain.Negative},
		{text: "no problem", want: domain.Positive},
		{text: "room building", want: domain.Neutral},
		{text: "", want: domain.Neutral},
		{text: "long queue", want: domain.Negative},
	}
	texts := make([]string, len(tests))
	for i, tt := range tests {
		texts[i] = tt.text
	}
	raw, err := m.Predict(context.Background(), texts)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	for i, tt := range tests {
		if got := LabelFor(raw[i]); got != tt.want {
			t.Fatalf("lexicon(%q) = %q (%s), want %q", tt.text, got, raw[i], tt.want)
		}
	}
}

func TestLexiconModelCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLexiconModel(nil).Predict(ctx, []string{"good"}); err == nil {
		t.Fatal("expected context error")
	}
}
