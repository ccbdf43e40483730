// Package evaluate scores predicted sentiment labels against a hand-labelled
// reference set. Rows are aligned by position, not by key.
package evaluate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"

	"feedbackinsight/internal/domain"
)

const (
	DefaultActualColumn    = "sentiment"
	DefaultPredictedColumn = "sentiment_label"
	DefaultMaxPredictions  = 100
)

type Options struct {
	ActualColumn    string
	PredictedColumn string
	MaxPredictions  int
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.ActualColumn) == "" {
		o.ActualColumn = DefaultActualColumn
	}
	if strings.TrimSpace(o.PredictedColumn) == "" {
		o.PredictedColumn = DefaultPredictedColumn
	}
	if o.MaxPredictions <= 0 {
		o.MaxPredictions = DefaultMaxPredictions
	}
	return o
}

// Evaluate compares the first maxPredictions predicted labels with actual,
// position by position. When one side is shorter only the overlapping prefix
// is compared. Classes are the labels observed in actual within that prefix;
// blank actual labels are not a class and never count as correct.
func Evaluate(actual, predicted []string, maxPredictions int) domain.AccuracyReport {
	if maxPredictions <= 0 {
		maxPredictions = DefaultMaxPredictions
	}
	if len(predicted) > maxPredictions {
		predicted = predicted[:maxPredictions]
	}
	n := min(len(actual), len(predicted))

	actualCounts := make(map[string]int)
	correct := make(map[string]int)
	matches := 0
	for i := 0; i < n; i++ {
		a := strings.TrimSpace(actual[i])
		p := strings.TrimSpace(predicted[i])
		if a == "" {
			continue
		}
		actualCounts[a]++
		if a == p {
			correct[a]++
			matches++
		}
	}

	classes := make([]domain.ClassAccuracy, 0, len(actualCounts))
	for label, count := range actualCounts {
		classes = append(classes, domain.ClassAccuracy{
			Label:    label,
			Actual:   count,
			Correct:  correct[label],
			Accuracy: ratio(correct[label], count),
		})
	}
	slices.SortFunc(classes, func(a, b domain.ClassAccuracy) int {
		if a.Actual != b.Actual {
			return b.Actual - a.Actual
		}
		return strings.Compare(a.Label, b.Label)
	})

	return domain.AccuracyReport{
		Compared:        n,
		Classes:         classes,
		OverallAccuracy: ratio(matches, n),
	}
}

// ratio returns num/den rounded to two decimals, or 0 when den is 0.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return math.Round(float64(num)/float64(den)*100) / 100
}

// LoadLabels reads one column of a CSV file with a header row. Rows shorter
// than the header yield an empty label.
func LoadLabels(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("labels %s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read labels header %s: %w", path, err)
	}
	idx := slices.IndexFunc(header, func(h string) bool {
		return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == column
	})
	if idx < 0 {
		return nil, fmt.Errorf("labels %s: column %q not found in header %v", path, column, header)
	}

	var labels []string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read labels %s: %w", path, err)
		}
		if idx < len(row) {
			labels = append(labels, row[idx])
		} else {
			labels = append(labels, "")
		}
	}
	return labels, nil
}

// EvaluateFiles loads the reference and prediction CSV files and evaluates
// them with Evaluate.
func EvaluateFiles(actualPath, predictedPath string, opts Options) (domain.AccuracyReport, error) {
	opts = opts.withDefaults()
	actual, err := LoadLabels(actualPath, opts.ActualColumn)
	if err != nil {
		return domain.AccuracyReport{}, err
	}
	predicted, err := LoadLabels(predictedPath, opts.PredictedColumn)
	if err != nil {
		return domain.AccuracyReport{}, err
	}
	return Evaluate(actual, predicted, opts.MaxPredictions), nil
}
