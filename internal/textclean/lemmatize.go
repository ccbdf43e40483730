package textclean

import (
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Irregular noun plurals.
var irregularNouns = map[string]string{
	"children":   "child",
	"men":        "man",
	"women":      "woman",
	"people":     "people",
	"feet":       "foot",
	"teeth":      "tooth",
	"geese":      "goose",
	"mice":       "mouse",
	"lice":       "louse",
	"oxen":       "ox",
	"wives":      "wife",
	"knives":     "knife",
	"lives":      "life",
	"leaves":     "leaf",
	"halves":     "half",
	"shelves":    "shelf",
	"selves":     "self",
	"thieves":    "thief",
	"wolves":     "wolf",
	"loaves":     "loaf",
	"analyses":   "analysis",
	"crises":     "crisis",
	"theses":     "thesis",
	"criteria":   "criterion",
	"phenomena":  "phenomenon",
	"indices":    "index",
	"matrices":   "matrix",
	"appendices": "appendix",
	"cacti":      "cactus",
	"fungi":      "fungus",
	"stimuli":    "stimulus",
	"syllabi":    "syllabus",
	"alumni":     "alumnus",
	"buses":      "bus",
	"quizzes":    "quiz",
}

// Words ending in "s" that are already base forms.
var invariantNouns = map[string]bool{
	"news": true, "series": true, "species": true, "means": true,
	"always": true, "perhaps": true, "sometimes": true, "thanks": true,
	"yes": true, "physics": true, "mathematics": true, "economics": true,
	"politics": true, "ethics": true, "logistics": true, "analytics": true,
	"lens": true, "gas": true, "plus": true, "its": true, "has": true,
	"was": true, "does": true, "his": true, "hers": true, "ours": true,
	"yours": true, "theirs": true, "whereas": true, "afterwards": true,
	"towards": true, "nevertheless": true, "chaos": true, "bias": true,
	"canvas": true, "atlas": true, "alias": true, "diabetes": true,
	"pants": true, "scissors": true, "clothes": true, "jeans": true,
	"headquarters": true, "premises": true, "savings": true, "earnings": true,
	"outskirts": true, "goods": true, "wages": true, "overseas": true,
}

type suffixRule struct {
	suffix  string
	replace string
}

// Plural endings and the singular each may come from. A candidate is only
// accepted when the dictionary lists it as a lemma of the word.
var nounSuffixRules = []suffixRule{
	{suffix: "sses", replace: "ss"},
	{suffix: "ies", replace: "y"},
	{suffix: "ies", replace: "ie"},
	{suffix: "ches", replace: "ch"},
	{suffix: "shes", replace: "sh"},
	{suffix: "xes", replace: "x"},
	{suffix: "zzes", replace: "zz"},
	{suffix: "ves", replace: "f"},
	{suffix: "ves", replace: "fe"},
	{suffix: "men", replace: "man"},
	{suffix: "es", replace: ""},
	{suffix: "s", replace: ""},
}

// The English dictionary is large; it is decoded once per process and
// shared by every Lemmatizer.
var englishDictionary = sync.OnceValues(func() (*golem.Lemmatizer, error) {
	d, err := golem.New(en.New())
	if err != nil {
		log.Printf("textclean: english lemma dictionary unavailable, plurals kept as-is: %v", err)
	}
	return d, err
})

// Lemmatizer reduces tokens to a noun base form. It has no part-of-speech
// tagging: only plural endings are undone, and only when the dictionary
// confirms the singular, so verbs and adjectives pass through unchanged.
type Lemmatizer struct {
	overrides map[string]string
	dict      *golem.Lemmatizer
}

func NewLemmatizer(vocab *Vocabulary) *Lemmatizer {
	l := &Lemmatizer{overrides: make(map[string]string)}
	if d, err := englishDictionary(); err == nil {
		l.dict = d
	}
	if vocab != nil {
		for word, lemma := range vocab.Lemmas {
			word, lemma = normalizeTerm(word), normalizeTerm(lemma)
			if word != "" && lemma != "" {
				l.overrides[word] = lemma
			}
		}
	}
	return l
}

func (l *Lemmatizer) Lemma(word string) string {
	if lemma, ok := l.overrides[word]; ok {
		return lemma
	}
	if lemma, ok := irregularNouns[word]; ok {
		return lemma
	}
	if invariantNouns[word] || l.dict == nil || len(word) < 3 {
		return word
	}
	lemmas := l.dict.Lemmas(word)
	if len(lemmas) == 0 {
		return word
	}
	for _, rule := range nounSuffixRules {
		if !strings.HasSuffix(word, rule.suffix) {
			continue
		}
		candidate := strings.TrimSuffix(word, rule.suffix) + rule.replace
		if candidate != "" && slices.Contains(lemmas, candidate) {
			return candidate
		}
	}
	return word
}

func (l *Lemmatizer) LemmatizeAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = l.Lemma(t)
	}
	return out
}
