package textclean

import (
	"strings"

	"github.com/kljensen/snowball/english"
)

// Negations carry sentiment polarity and are never treated as stopwords.
var defaultKeep = []string{"not", "no"}

// defaultExtra covers the filler interjection plus contraction fragments
// left behind once apostrophes become spaces ("don't" -> "don t").
var defaultExtra = []string{
	"uhh",
	"s", "t", "d", "ll", "m", "o", "re", "ve", "y",
	"ain", "aren", "couldn", "didn", "doesn", "don", "hadn", "hasn", "haven",
	"isn", "ma", "mightn", "mustn", "needn", "shan", "shouldn", "wasn",
	"weren", "won", "wouldn",
	"can", "will", "just", "should", "now",
}

// Stopwords is the English stopword list with local exceptions.
type Stopwords struct {
	keep  map[string]bool
	extra map[string]bool
}

func NewStopwords(vocab *Vocabulary) *Stopwords {
	s := &Stopwords{
		keep:  make(map[string]bool),
		extra: make(map[string]bool),
	}
	for _, w := range defaultKeep {
		s.keep[w] = true
	}
	for _, w := range defaultExtra {
		s.extra[w] = true
	}
	if vocab != nil {
		for _, w := range vocab.ExtraStopwords {
			if w = normalizeTerm(w); w != "" {
				s.extra[w] = true
			}
		}
		for _, w := range vocab.KeepStopwords {
			if w = normalizeTerm(w); w != "" {
				s.keep[w] = true
				delete(s.extra, w)
			}
		}
	}
	return s
}

func (s *Stopwords) Contains(word string) bool {
	w := strings.ToLower(word)
	if s.keep[w] {
		return false
	}
	if s.extra[w] {
		return true
	}
	return english.IsStopWord(w)
}

func (s *Stopwords) Filter(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !s.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}
