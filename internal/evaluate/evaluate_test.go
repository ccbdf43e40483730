package evaluate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEvaluateExample(t *testing.T) {
	actual := []string{"positive", "negative", "positive", "neutral"}
	predicted := []string{"positive", "positive", "positive", "neutral"}

	report := Evaluate(actual, predicted, 100)
	want := map[string]float64{"positive": 1.00, "negative": 0.00, "neutral": 1.00}
	got := report.PerClassAccuracy()
	for label, acc := range want {
		if got[label] != acc {
			t.Fatalf("accuracy[%s] = %.2f, want %.2f", label, got[label], acc)
		}
	}
	if report.OverallAccuracy != 0.75 {
		t.Fatalf("overall = %.2f, want 0.75", report.OverallAccuracy)
	}
	if report.Compared != 4 {
		t.Fatalf("compared = %d, want 4", report.Compared)
	}
	if report.Classes[0].Label != "positive" || report.Classes[0].Actual != 2 {
		t.Fatalf("expected positive first by count, got %+v", report.Classes)
	}
	if report.CorrectCounts()["negative"] != 0 || report.ActualCounts()["neutral"] != 1 {
		t.Fatalf("unexpected counts: %+v", report.Classes)
	}
}

func TestEvaluateShorterPredictions(t *testing.T) {
	actual := []string{"positive", "negative", "neutral", "negative", "positive"}
	predicted := []string{"positive", "neutral"}
	report := Evaluate(actual, predicted, 100)
	if report.Compared != 2 {
		t.Fatalf("compared = %d, want 2", report.Compared)
	}
	if _, ok := report.Class("neutral"); ok {
		t.Fatal("neutral only appears outside the overlap and should not be a class")
	}
	if report.OverallAccuracy != 0.5 {
		t.Fatalf("overall = %.2f, want 0.50", report.OverallAccuracy)
	}
}

func TestEvaluateMaxPredictionsCap(t *testing.T) {
	actual := []string{"positive", "positive", "negative"}
	predicted := []string{"positive", "positive", "negative"}
	report := Evaluate(actual, predicted, 2)
	if report.Compared != 2 {
		t.Fatalf("compared = %d, want 2", report.Compared)
	}
	if _, ok := report.Class("negative"); ok {
		t.Fatal("row beyond the cap should not be compared")
	}
}

func TestEvaluatePredictedOnlyClassIgnored(t *testing.T) {
	report := Evaluate([]string{"neutral", "neutral", "neutral"}, []string{"positive", "neutral", "negative"}, 0)
	if len(report.Classes) != 1 {
		t.Fatalf("expected only the neutral class, got %+v", report.Classes)
	}
	c, _ := report.Class("neutral")
	if c.Accuracy != 0.33 {
		t.Fatalf("neutral accuracy = %.2f, want 0.33", c.Accuracy)
	}
	if report.OverallAccuracy != 0.33 {
		t.Fatalf("overall = %.2f, want 0.33", report.OverallAccuracy)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	report := Evaluate(nil, []string{"positive"}, 100)
	if report.Compared != 0 || report.OverallAccuracy != 0 || len(report.Classes) != 0 {
		t.Fatalf("unexpected report for empty input: %+v", report)
	}
	if !strings.Contains(report.String(), "Overall accuracy: 0.00") {
		t.Fatalf("String() = %q", report.String())
	}
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadLabels(t *testing.T) {
	path := writeCSV(t, "labels.csv", "\ufeffid,text,sentiment\n1,\"hello, world\",positive\n2,bad\n3,ok,neutral\n")
	labels, err := LoadLabels(path, "sentiment")
	if err != nil {
		t.Fatalf("LoadLabels: %v", err)
	}
	want := []string{"positive", "", "neutral"}
	if strings.Join(labels, "|") != strings.Join(want, "|") {
		t.Fatalf("labels = %q, want %q", labels, want)
	}

	if _, err := LoadLabels(path, "missing"); err == nil {
		t.Fatal("expected missing column error")
	}
	if _, err := LoadLabels(filepath.Join(t.TempDir(), "nope.csv"), "sentiment"); err == nil {
		t.Fatal("expected open error")
	}
	if _, err := LoadLabels(writeCSV(t, "empty.csv", ""), "sentiment"); err == nil {
		t.Fatal("expected empty file error")
	}
}

func TestEvaluateFiles(t *testing.T) {
	actual := writeCSV(t, "actual.csv", "feedback,sentiment\na,positive\nb,negative\nc,positive\nd,neutral\n")
	predicted := writeCSV(t, "pred.csv", "department_name,sentiment_label\nx,positive\nx,positive\nx,positive\nx,neutral\n")

	report, err := EvaluateFiles(actual, predicted, Options{})
	if err != nil {
		t.Fatalf("EvaluateFiles: %v", err)
	}
	if report.OverallAccuracy != 0.75 {
		t.Fatalf("overall = %.2f, want 0.75", report.OverallAccuracy)
	}

	if _, err := EvaluateFiles(actual, predicted, Options{PredictedColumn: "label"}); err == nil {
		t.Fatal("expected error for missing predicted column")
	}
}
