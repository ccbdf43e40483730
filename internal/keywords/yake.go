package keywords

import (
	"maps"
	"math"
	"slices"
	"strings"
	"unicode"
)

const (
	yakeWindowSize = 1
	yakeDedupLimit = 0.9
)

// YAKE ranks candidates with the YAKE! term statistics. Scores are
// non-negative and lower means more relevant.
type YAKE struct {
	windowSize int
	dedupLimit float64
}

func NewYAKE() *YAKE {
	return &YAKE{windowSize: yakeWindowSize, dedupLimit: yakeDedupLimit}
}

func (y *YAKE) Name() string { return "yake" }

type yakeTerm struct {
	word      string
	stopword  bool
	tf        float64
	tfUpper   float64
	tfAcronym float64
	sentences []int
	left      map[string]float64
	right     map[string]float64
	h         float64
}

type yakeCandidate struct {
	words  []string
	phrase string
	tf     float64
	first  int
}

func (y *YAKE) Rank(text string, maxNgram, topN int) []Keyword {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	if maxNgram <= 0 {
		maxNgram = DefaultMaxNgram
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	terms := y.buildTerms(tokens)
	scoreTerms(terms, countSentences(tokens))

	candidates := collectCandidates(tokens, terms, maxNgram)
	scored := make([]Keyword, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, Keyword{Phrase: c.phrase, Score: candidateScore(c, terms)})
	}
	slices.SortStableFunc(scored, func(a, b Keyword) int {
		if a.Score != b.Score {
			if a.Score < b.Score {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Phrase, b.Phrase)
	})

	var out []Keyword
	for _, kw := range scored {
		if len(out) == topN {
			break
		}
		dup := false
		for _, kept := range out {
			if similarity(kw.Phrase, kept.Phrase) > y.dedupLimit {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, kw)
		}
	}
	return out
}

func (y *YAKE) buildTerms(tokens []token) map[string]*yakeTerm {
	terms := make(map[string]*yakeTerm)
	for i, tok := range tokens {
		t := terms[tok.lower]
		if t == nil {
			t = &yakeTerm{
				word:     tok.lower,
				stopword: isStopword(tok.lower),
				left:     make(map[string]float64),
				right:    make(map[string]float64),
			}
			terms[tok.lower] = t
		}
		t.tf++
		if isAcronym(tok.raw) {
			t.tfAcronym++
		} else if startsUpper(tok.raw) && !startsSentence(tokens, i) {
			t.tfUpper++
		}
		if n := len(t.sentences); n == 0 || t.sentences[n-1] != tok.sentence {
			t.sentences = append(t.sentences, tok.sentence)
		}

		for j := max(0, i-y.windowSize); j < i; j++ {
			prev := tokens[j]
			if prev.chunk != tok.chunk {
				continue
			}
			terms[prev.lower].right[tok.lower]++
			t.left[prev.lower]++
		}
	}
	return terms
}

// scoreTerms walks terms in sorted order so the floating point sums behind
// mean and std, and therefore every score, are identical across calls.
func scoreTerms(terms map[string]*yakeTerm, sentenceCount int) {
	words := slices.Sorted(maps.Keys(terms))
	var validTF []float64
	maxTF := 0.0
	for _, w := range words {
		t := terms[w]
		if !t.stopword {
			validTF = append(validTF, t.tf)
		}
		maxTF = max(maxTF, t.tf)
	}
	if len(validTF) == 0 {
		for _, w := range words {
			validTF = append(validTF, terms[w].tf)
		}
	}
	mean, std := meanStd(validTF)

	for _, t := range terms {
		casing := max(t.tfAcronym, t.tfUpper) / (1 + math.Log(t.tf))
		position := math.Log(math.Log(3 + median(t.sentences)))
		frequency := t.tf / (mean + std)
		relatedness := (0.5 + dispersion(t.left)*(t.tf/maxTF)) + (0.5 + dispersion(t.right)*(t.tf/maxTF))
		spread := float64(len(t.sentences)) / float64(max(sentenceCount, 1))
		t.h = (relatedness * position) / (casing + frequency/relatedness + spread/relatedness)
	}
}

// dispersion is distinct neighbours over total co-occurrences.
func dispersion(neighbours map[string]float64) float64 {
	total := 0.0
	for _, w := range neighbours {
		total += w
	}
	if total == 0 {
		return 0
	}
	return float64(len(neighbours)) / total
}

func collectCandidates(tokens []token, terms map[string]*yakeTerm, maxNgram int) []*yakeCandidate {
	byPhrase := make(map[string]*yakeCandidate)
	var ordered []*yakeCandidate
	for i := range tokens {
		for n := 1; n <= maxNgram && i+n <= len(tokens); n++ {
			window := tokens[i : i+n]
			if window[n-1].chunk != window[0].chunk {
				break
			}
			first, last := terms[window[0].lower], terms[window[n-1].lower]
			if first.stopword || last.stopword || !allWordy(window) {
				continue
			}
			words := make([]string, n)
			for k, tok := range window {
				words[k] = tok.lower
			}
			phrase := strings.Join(words, " ")
			c := byPhrase[phrase]
			if c == nil {
				c = &yakeCandidate{words: words, phrase: phrase, first: i}
				byPhrase[phrase] = c
				ordered = append(ordered, c)
			}
			c.tf++
		}
	}
	return ordered
}

func candidateScore(c *yakeCandidate, terms map[string]*yakeTerm) float64 {
	prod, sum := 1.0, 0.0
	for i, w := range c.words {
		t := terms[w]
		if !t.stopword {
			prod *= t.h
			sum += t.h
			continue
		}
		prev, next := terms[c.words[i-1]], terms[c.words[i+1]]
		probPrev := prev.right[w] / prev.tf
		probNext := t.right[next.word] / next.tf
		prob := probPrev * probNext
		prod *= 1 + (1 - prob)
		sum -= 1 - prob
	}
	denom := c.tf * (1 + sum)
	if denom <= 0 {
		return math.MaxFloat64
	}
	return prod / denom
}

func countSentences(tokens []token) int {
	if len(tokens) == 0 {
		return 0
	}
	return tokens[len(tokens)-1].sentence + 1
}

func allWordy(window []token) bool {
	for _, tok := range window {
		if !hasLetter(tok.lower) {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func isAcronym(s string) bool {
	if len(s) < 2 {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return hasLetter(s)
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func startsSentence(tokens []token, i int) bool {
	return i == 0 || tokens[i-1].sentence != tokens[i].sentence
}

func median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}

// similarity is 1 - levenshtein(a, b) / max(len(a), len(b)).
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
