package domain

import (
	"fmt"
	"strings"
)

type ClassAccuracy struct {
	Label    string
	Actual   int
	Correct  int
	Accuracy float64
}

// AccuracyReport compares reference labels against predicted labels.
// Classes are ordered by actual count descending, then label.
type AccuracyReport struct {
	Compared        int
	Classes         []ClassAccuracy
	OverallAccuracy float64
}

func (r AccuracyReport) Class(label string) (ClassAccuracy, bool) {
	for _, c := range r.Classes {
		if c.Label == label {
			return c, true
		}
	}
	return ClassAccuracy{}, false
}

func (r AccuracyReport) ActualCounts() map[string]int {
	out := make(map[string]int, len(r.Classes))
	for _, c := range r.Classes {
		out[c.Label] = c.Actual
	}
	return out
}

func (r AccuracyReport) CorrectCounts() map[string]int {
	out := make(map[string]int, len(r.Classes))
	for _, c := range r.Classes {
		out[c.Label] = c.Correct
	}
	return out
}

func (r AccuracyReport) PerClassAccuracy() map[string]float64 {
	out := make(map[string]float64, len(r.Classes))
	for _, c := range r.Classes {
		out[c.Label] = c.Accuracy
	}
	return out
}

func (r AccuracyReport) String() string {
	var b strings.Builder
	b.WriteString("Total actual counts:\n")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "  %-10s %d\n", c.Label, c.Actual)
	}
	b.WriteString("Correct predictions per class:\n")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "  %-10s %d\n", c.Label, c.Correct)
	}
	b.WriteString("Per-class accuracy:\n")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "  %-10s %.2f\n", c.Label, c.Accuracy)
	}
	fmt.Fprintf(&b, "Overall accuracy: %.2f (rows compared: %d)\n", r.OverallAccuracy, r.Compared)
	return b.String()
}
