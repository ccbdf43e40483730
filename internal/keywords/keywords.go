// Package keywords extracts short key phrases from cleaned feedback text.
//
// Two rankers are provided:
//
//   - YAKE: unsupervised single-document statistics (casing, position,
//     frequency, context relatedness, sentence spread). Lower scores are
//     better. This is the default.
//   - TextRank: PageRank over a word co-occurrence graph, with adjacent
//     top-ranked words merged into phrases. Higher scores are better.
//
// Rankers return candidates best first; the Extractor keeps the top N and
// then drops conversational fillers, so a record may end up with fewer than
// N keywords.
//
// Rankers and the Extractor are read-only after construction and safe for
// concurrent use.
package keywords

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

const (
	DefaultTopN     = 5
	DefaultMaxNgram = 2
)

type Keyword struct {
	Phrase string  `json:"phrase"`
	Score  float64 `json:"score"`
}

// Ranker orders candidate phrases of up to maxNgram words, best first, and
// returns at most topN of them.
type Ranker interface {
	Rank(text string, maxNgram, topN int) []Keyword
	Name() string
}

// NewRanker returns the ranker registered under name. Unknown names fall
// back to YAKE.
func NewRanker(name string) Ranker {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "textrank":
		return NewTextRank()
	default:
		return NewYAKE()
	}
}

type Options struct {
	TopN     int
	MaxNgram int
}

type Extractor struct {
	ranker   Ranker
	fillers  *FillerSet
	topN     int
	maxNgram int
}

func New(ranker Ranker, fillers *FillerSet, opts Options) *Extractor {
	if ranker == nil {
		ranker = NewYAKE()
	}
	if fillers == nil {
		fillers = NewFillerSet(nil)
	}
	e := &Extractor{ranker: ranker, fillers: fillers, topN: opts.TopN, maxNgram: opts.MaxNgram}
	if e.topN <= 0 {
		e.topN = DefaultTopN
	}
	if e.maxNgram <= 0 {
		e.maxNgram = DefaultMaxNgram
	}
	return e
}

func (e *Extractor) RankerName() string { return e.ranker.Name() }

// Extract returns up to TopN phrases for text with fillers removed. Empty
// text yields an empty, non-nil list.
func (e *Extractor) Extract(text string) []string {
	out := []string{}
	if strings.TrimSpace(text) == "" {
		return out
	}
	ranked := e.ranker.Rank(text, e.maxNgram, e.topN)
	if len(ranked) > e.topN {
		ranked = ranked[:e.topN]
	}
	for _, kw := range ranked {
		if e.fillers.IsFiller(kw.Phrase) {
			continue
		}
		out = append(out, kw.Phrase)
	}
	return out
}

// token is one word of the input with its position metadata.
type token struct {
	raw      string
	lower    string
	sentence int
	chunk    int
	index    int
}

// tokenize splits text into words. Sentence boundaries are . ! ? and line
// breaks; any other punctuation closes the current chunk so that candidate
// phrases never span it.
func tokenize(text string) []token {
	var (
		tokens   []token
		b        strings.Builder
		sentence int
		chunk    int
	)
	flush := func() {
		if b.Len() == 0 {
			return
		}
		raw := b.String()
		tokens = append(tokens, token{raw: raw, lower: strings.ToLower(raw), sentence: sentence, chunk: chunk, index: len(tokens)})
		b.Reset()
	}
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == '!' || r == '?' || r == '\n':
			flush()
			if len(tokens) > 0 && tokens[len(tokens)-1].sentence == sentence {
				sentence++
			}
			chunk++
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			chunk++
		}
	}
	flush()
	return tokens
}

func isStopword(word string) bool {
	return len(word) < 3 || english.IsStopWord(word)
}
