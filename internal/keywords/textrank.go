package keywords

import (
	"math"
	"slices"
	"strings"
)

const (
	textrankDamping    = 0.85
	textrankMaxIter    = 30
	textrankEpsilon    = 0.0001
	textrankWindowSize = 3
)

// TextRank ranks words by PageRank over a co-occurrence graph of
// non-stopword tokens, then merges runs of adjacent top words into phrases.
// Higher scores are better.
type TextRank struct{}

func NewTextRank() *TextRank { return &TextRank{} }

func (t *TextRank) Name() string { return "textrank" }

// edge is a neighbor index + weight pair used for deterministic iteration.
type edge struct {
	to     int
	weight float64
}

func (t *TextRank) Rank(text string, maxNgram, topN int) []Keyword {
	if maxNgram <= 0 {
		maxNgram = DefaultMaxNgram
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	var words []token
	for _, tok := range tokenize(text) {
		if !isStopword(tok.lower) && hasLetter(tok.lower) {
			words = append(words, tok)
		}
	}
	if len(words) == 0 {
		return nil
	}

	nodes, _, edges := buildGraph(words)
	scores := pagerank(len(nodes), edges)
	wordScore := make(map[string]float64, len(nodes))
	for i, n := range nodes {
		wordScore[n] = scores[i]
	}

	// Only the top third of the vocabulary may start or extend a phrase.
	keep := max(1, (len(nodes)+2)/3)
	ranked := slices.Clone(nodes)
	slices.SortStableFunc(ranked, func(a, b string) int {
		return cmpDesc(wordScore[a], wordScore[b], a, b)
	})
	top := make(map[string]bool, keep)
	for _, w := range ranked[:keep] {
		top[w] = true
	}

	phrases := make(map[string]float64)
	var order []string
	add := func(run []token) {
		parts := make([]string, len(run))
		score := 0.0
		for i, tok := range run {
			parts[i] = tok.lower
			score += wordScore[tok.lower]
		}
		phrase := strings.Join(parts, " ")
		if _, ok := phrases[phrase]; !ok {
			order = append(order, phrase)
		}
		phrases[phrase] = score
	}

	var run []token
	for _, tok := range words {
		contiguous := len(run) > 0 && tok.index == run[len(run)-1].index+1 && tok.chunk == run[len(run)-1].chunk
		if !top[tok.lower] {
			if len(run) > 0 {
				add(run)
			}
			run = nil
			continue
		}
		if !contiguous || len(run) == maxNgram {
			if len(run) > 0 {
				add(run)
			}
			run = nil
		}
		run = append(run, tok)
	}
	if len(run) > 0 {
		add(run)
	}

	out := make([]Keyword, 0, len(order))
	for _, p := range order {
		out = append(out, Keyword{Phrase: p, Score: phrases[p]})
	}
	slices.SortStableFunc(out, func(a, b Keyword) int {
		return cmpDesc(a.Score, b.Score, a.Phrase, b.Phrase)
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

func cmpDesc(sa, sb float64, a, b string) int {
	if sa != sb {
		if sa > sb {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func buildGraph(words []token) (nodes []string, index map[string]int, edges [][]edge) {
	index = make(map[string]int)
	for _, w := range words {
		if _, ok := index[w.lower]; !ok {
			index[w.lower] = len(nodes)
			nodes = append(nodes, w.lower)
		}
	}

	edgeMaps := make([]map[int]float64, len(nodes))
	for i := range edgeMaps {
		edgeMaps[i] = make(map[int]float64)
	}
	for i, w := range words {
		si := index[w.lower]
		end := min(i+textrankWindowSize, len(words))
		for j := i + 1; j < end; j++ {
			sj := index[words[j].lower]
			if si != sj {
				edgeMaps[si][sj]++
				edgeMaps[sj][si]++
			}
		}
	}

	edges = make([][]edge, len(nodes))
	for i, m := range edgeMaps {
		edges[i] = make([]edge, 0, len(m))
		for to, w := range m {
			edges[i] = append(edges[i], edge{to: to, weight: w})
		}
		slices.SortFunc(edges[i], func(a, b edge) int {
			return a.to - b.to
		})
	}
	return nodes, index, edges
}

func pagerank(n int, edges [][]edge) []float64 {
	if n == 0 {
		return nil
	}
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}
	outWeight := make([]float64, n)
	for i, neighbors := range edges {
		for _, e := range neighbors {
			outWeight[i] += e.weight
		}
	}

	nf := float64(n)
	for range textrankMaxIter {
		next := make([]float64, n)
		maxDelta := 0.0
		for i := range n {
			sum := 0.0
			for _, e := range edges[i] {
				if outWeight[e.to] > 0 {
					sum += (e.weight / outWeight[e.to]) * scores[e.to]
				}
			}
			next[i] = (1-textrankDamping)/nf + textrankDamping*sum
			maxDelta = max(maxDelta, math.Abs(next[i]-scores[i]))
		}
		scores = next
		if maxDelta < textrankEpsilon {
			break
		}
	}
	return scores
}
