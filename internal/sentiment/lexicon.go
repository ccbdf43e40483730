package sentiment

import (
	"context"
	"strings"
)

// LexiconModel is an offline stand-in for the pretrained classifier. It sums
// word polarities over cleaned text, flipping the next polar word after a
// negation, and emits the same LABEL_0/1/2 classes as the remote model.
type LexiconModel struct {
	lexicon map[string]int
}

func NewLexiconModel(extra map[string]int) *LexiconModel {
	lex := make(map[string]int, len(polarity)+len(extra))
	for w, v := range polarity {
		lex[w] = v
	}
	for w, v := range extra {
		lex[strings.ToLower(strings.TrimSpace(w))] = v
	}
	return &LexiconModel{lexicon: lex}
}

func (m *LexiconModel) Name() string { return "lexicon" }

func (m *LexiconModel) Predict(ctx context.Context, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = scoreLabel(m.Score(t))
	}
	return out, nil
}

func (m *LexiconModel) Score(text string) int {
	score, negated := 0, false
	for _, tok := range strings.Fields(text) {
		if negations[tok] {
			negated = true
			continue
		}
		v, ok := m.lexicon[tok]
		if !ok {
			continue
		}
		if negated {
			v = -v
			negated = false
		}
		score += v
	}
	return score
}

func scoreLabel(score int) string {
	switch {
	case score > 0:
		return "LABEL_2"
	case score < 0:
		return "LABEL_0"
	}
	return "LABEL_1"
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "nothing": true, "nobody": true,
	"nowhere": true, "neither": true, "without": true, "hardly": true,
}

// Polarity weights on the AFINN -5..5 scale, keyed by the lemmatized forms
// the normalizer produces.
var polarity = map[string]int{
	"amazing": 4, "awesome": 4, "brilliant": 4, "excellent": 3, "fantastic": 4,
	"outstanding": 5, "superb": 5, "wonderful": 4, "perfect": 3, "love": 3,
	"loved": 3, "great": 3, "good": 3, "nice": 3, "happy": 3, "glad": 3,
	"enjoy": 2, "enjoyed": 2, "helpful": 2, "friendly": 2, "kind": 2,
	"clean": 2, "comfortable": 2, "efficient": 2, "fast": 2, "quick": 2,
	"easy": 1, "clear": 1, "useful": 2, "recommend": 2, "recommended": 2,
	"satisfied": 2, "pleasant": 3, "supportive": 2, "professional": 2,
	"engaging": 2, "interesting": 2, "organized": 2, "responsive": 2,
	"thank": 2, "thanks": 2, "appreciate": 2, "appreciated": 2, "best": 3,
	"better": 2, "improved": 2, "like": 2, "liked": 2, "fine": 2, "ok": 1,
	"okay": 1, "polite": 2, "patient": 2, "knowledgeable": 2, "smooth": 2,
	"bad": -3, "terrible": -3, "awful": -3, "horrible": -3, "worst": -3,
	"poor": -2, "rude": -2, "slow": -2, "dirty": -2, "broken": -1,
	"disappointed": -2, "disappointing": -2, "unhelpful": -2, "confusing": -2,
	"confused": -2, "difficult": -1, "hard": -1, "late": -1, "delay": -1,
	"delayed": -1, "waiting": -1, "wait": -1, "problem": -2, "issue": -1,
	"complaint": -2, "complain": -2, "frustrated": -2, "frustrating": -2,
	"annoying": -2, "annoyed": -2, "angry": -3, "upset": -2, "hate": -3,
	"hated": -3, "boring": -3, "useless": -2, "expensive": -1, "noisy": -1,
	"crowded": -1, "unfair": -2, "lack": -2, "lacking": -2, "fail": -2,
	"failed": -2, "failure": -2, "wrong": -2, "mess": -2, "messy": -2,
	"unprofessional": -2, "ignored": -2, "lost": -3, "cold": -1,
	"uncomfortable": -2, "worse": -3, "sad": -2, "unhappy": -2, "stress": -1,
	"stressful": -2, "overcrowded": -2, "outdated": -1, "rushed": -1,
}
