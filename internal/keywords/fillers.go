package keywords

import "strings"

var defaultFillers = []string{"uh", "uhh", "umm", "um", "like", "i mean"}

// FillerSet holds conversational fillers that are never reported as keywords.
// Membership is checked on the trimmed, lowercased phrase.
type FillerSet struct {
	terms map[string]struct{}
}

// NewFillerSet returns the default fillers plus extra.
func NewFillerSet(extra []string) *FillerSet {
	f := &FillerSet{terms: make(map[string]struct{}, len(defaultFillers)+len(extra))}
	for _, w := range defaultFillers {
		f.terms[w] = struct{}{}
	}
	for _, w := range extra {
		if w = normalizeFiller(w); w != "" {
			f.terms[w] = struct{}{}
		}
	}
	return f
}

func (f *FillerSet) IsFiller(phrase string) bool {
	if f == nil {
		return false
	}
	_, ok := f.terms[normalizeFiller(phrase)]
	return ok
}

// Filter returns keywords without fillers, preserving order.
func (f *FillerSet) Filter(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if !f.IsFiller(k) {
			out = append(out, k)
		}
	}
	return out
}

func normalizeFiller(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
