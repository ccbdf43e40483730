package keywords

import (
	"slices"
	"strings"
	"testing"
)

var sampleTexts = []string{
	"",
	"service",
	"not good",
	"staff rude staff rude service slow queue long",
	"customer service customer service customer service",
	"great teacher helpful staff clean room library quiet wifi slow parking expensive",
	"Library WIFI is slow. Library staff, however, are great! WIFI again",
}

func TestYAKERankProperties(t *testing.T) {
	y := NewYAKE()
	for _, text := range sampleTexts {
		for _, maxNgram := range []int{1, 2, 3} {
			got := y.Rank(text, maxNgram, 5)
			if len(got) > 5 {
				t.Fatalf("Rank(%q) returned %d keywords, want <= 5", text, len(got))
			}
			again := y.Rank(text, maxNgram, 5)
			if !slices.Equal(got, again) {
				t.Fatalf("Rank(%q) not deterministic: %v vs %v", text, got, again)
			}
			for i, kw := range got {
				words := strings.Fields(kw.Phrase)
				if len(words) == 0 || len(words) > maxNgram {
					t.Fatalf("Rank(%q) phrase %q has %d words, max %d", text, kw.Phrase, len(words), maxNgram)
				}
				if isStopword(words[0]) || isStopword(words[len(words)-1]) {
					t.Fatalf("Rank(%q) phrase %q starts or ends with a stopword", text, kw.Phrase)
				}
				if i > 0 && got[i-1].Score > kw.Score {
					t.Fatalf("Rank(%q) not ascending: %v", text, got)
				}
			}
		}
	}
}

func TestYAKEScoresStableAcrossCalls(t *testing.T) {
	y := NewYAKE()
	text := "Library WIFI is slow. Library staff, however, are great! WIFI again and the parking queue is long, staff rude, room quiet"
	first := y.Rank(text, 2, 5)
	if len(first) == 0 {
		t.Fatal("expected keywords")
	}
	for i := 0; i < 300; i++ {
		got := y.Rank(text, 2, 5)
		if !slices.Equal(got, first) {
			t.Fatalf("call %d: Rank = %v, first call %v", i, got, first)
		}
	}
}

func TestYAKESimpleCases(t *testing.T) {
	y := NewYAKE()
	if got := y.Rank("service", 2, 5); len(got) != 1 || got[0].Phrase != "service" {
		t.Fatalf("Rank(service) = %v", got)
	}
	if got := y.Rank("not good", 2, 5); len(got) != 1 || got[0].Phrase != "good" {
		t.Fatalf("Rank(not good) = %v, want [good]", got)
	}
	if got := y.Rank("uh um ok", 2, 5); len(got) != 0 {
		t.Fatalf("short tokens should not be candidates, got %v", got)
	}

	got := y.Rank("customer service customer service customer service", 2, 5)
	if !containsPhrase(got, "customer service") {
		t.Fatalf("expected bigram candidate, got %v", got)
	}
}

func TestYAKEPhrasesDoNotCrossPunctuation(t *testing.T) {
	got := NewYAKE().Rank("great, staff", 2, 5)
	if containsPhrase(got, "great staff") {
		t.Fatalf("phrase crossed punctuation: %v", got)
	}
}

func TestTextRankProperties(t *testing.T) {
	tr := NewTextRank()
	for _, text := range sampleTexts {
		got := tr.Rank(text, 2, 5)
		if len(got) > 5 {
			t.Fatalf("Rank(%q) returned %d keywords", text, len(got))
		}
		if !slices.Equal(got, tr.Rank(text, 2, 5)) {
			t.Fatalf("Rank(%q) not deterministic", text)
		}
		for i, kw := range got {
			if n := len(strings.Fields(kw.Phrase)); n == 0 || n > 2 {
				t.Fatalf("Rank(%q) phrase %q has %d words", text, kw.Phrase, n)
			}
			if i > 0 && got[i-1].Score < kw.Score {
				t.Fatalf("Rank(%q) not descending: %v", text, got)
			}
		}
	}
	if got := tr.Rank("service", 2, 5); len(got) != 1 || got[0].Phrase != "service" {
		t.Fatalf("Rank(service) = %v", got)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Hello, world. New line")
	if len(got) != 4 {
		t.Fatalf("tokenize returned %d tokens: %+v", len(got), got)
	}
	if got[0].chunk == got[1].chunk {
		t.Fatal("comma should close a chunk")
	}
	if got[1].sentence != 0 || got[2].sentence != 1 || got[3].sentence != 1 {
		t.Fatalf("unexpected sentence ids: %+v", got)
	}
	if got[2].lower != "new" || got[2].raw != "New" {
		t.Fatalf("unexpected token %+v", got[2])
	}
}

func TestSimilarity(t *testing.T) {
	if got := levenshtein([]rune("kitten"), []rune("sitting")); got != 3 {
		t.Fatalf("levenshtein = %d, want 3", got)
	}
	if got := similarity("queue", "queue"); got != 1 {
		t.Fatalf("similarity identical = %f", got)
	}
	if got := similarity("queue", "queues"); got > yakeDedupLimit {
		t.Fatalf("queue/queues should not be deduplicated, similarity %f", got)
	}
}

func TestFillerSet(t *testing.T) {
	f := NewFillerSet([]string{" You  Know "})
	for _, w := range []string{"uh", "UHH", " umm ", "um", "like", "I mean", "you know"} {
		if !f.IsFiller(w) {
			t.Fatalf("expected %q to be a filler", w)
		}
	}
	for _, w := range []string{"likes", "mean", "staff", ""} {
		if f.IsFiller(w) {
			t.Fatalf("expected %q not to be a filler", w)
		}
	}
	got := f.Filter([]string{"staff", "like", "slow service", "um"})
	if !slices.Equal(got, []string{"staff", "slow service"}) {
		t.Fatalf("Filter = %v", got)
	}
}

type stubRanker struct {
	out []Keyword
}

func (s stubRanker) Name() string { return "stub" }

func (s stubRanker) Rank(string, int, int) []Keyword { return s.out }

func TestExtractorFiltersAfterTopN(t *testing.T) {
	ranker := stubRanker{out: []Keyword{
		{Phrase: "like"}, {Phrase: "staff"}, {Phrase: "um"}, {Phrase: "queue"},
		{Phrase: "food"}, {Phrase: "parking"}, {Phrase: "wifi"},
	}}
	e := New(ranker, nil, Options{TopN: 5, MaxNgram: 2})
	got := e.Extract("anything")
	want := []string{"staff", "queue", "food"}
	if !slices.Equal(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
}

func TestExtractorEmptyText(t *testing.T) {
	e := New(NewYAKE(), NewFillerSet(nil), Options{})
	got := e.Extract("   ")
	if got == nil || len(got) != 0 {
		t.Fatalf("Extract(blank) = %#v, want empty non-nil", got)
	}
}

func TestExtractorNeverReturnsFillers(t *testing.T) {
	fillers := NewFillerSet(nil)
	for _, ranker := range []Ranker{NewYAKE(), NewTextRank()} {
		e := New(ranker, fillers, Options{TopN: 5, MaxNgram: 2})
		for _, text := range append(sampleTexts, "like like staff like umm queue", "i mean the food like") {
			got := e.Extract(text)
			if len(got) > 5 {
				t.Fatalf("%s Extract(%q) returned %d keywords", ranker.Name(), text, len(got))
			}
			for _, kw := range got {
				if fillers.IsFiller(kw) {
					t.Fatalf("%s Extract(%q) returned filler %q", ranker.Name(), text, kw)
				}
			}
		}
	}
}

func TestNewRanker(t *testing.T) {
	if NewRanker("TextRank").Name() != "textrank" {
		t.Fatal("expected textrank ranker")
	}
	if NewRanker("").Name() != "yake" || NewRanker("unknown").Name() != "yake" {
		t.Fatal("expected yake fallback")
	}
}

func containsPhrase(kws []Keyword, phrase string) bool {
	for _, kw := range kws {
		if kw.Phrase == phrase {
			return true
		}
	}
	return false
}
