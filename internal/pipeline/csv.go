package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"feedbackinsight/internal/domain"
)

var predictionsHeader = []string{
	"id", "department_name", "date", "feedback_text",
	"clean_feedback", "sentiment_label", "keywords",
}

// WritePredictionsCSV writes every analyzed record with its input columns,
// creating the parent directory when needed. NULL feedback is written as an
// empty cell.
func WritePredictionsCSV(path string, records []domain.AnalyzedRecord) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create predictions dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create predictions file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(predictionsHeader); err != nil {
		f.Close()
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.DepartmentName,
			domain.FormatDate(r.Date),
			r.Text(),
			r.CleanFeedback,
			string(r.SentimentLabel),
			r.Keywords.Encode(),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write predictions: %w", err)
	}
	return f.Close()
}

// ReadFeedbackCSV reads seed feedback from a CSV with a header row.
// department_name and feedback_text are required columns; id and date are
// optional. Empty feedback cells are NULL.
func ReadFeedbackCSV(path string) ([]domain.FeedbackRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feedback csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read feedback csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"department_name", "feedback_text"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("feedback csv %s: missing column %q", path, required)
		}
	}
	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []domain.FeedbackRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read feedback csv line %d: %w", line, err)
		}
		rec := domain.FeedbackRecord{
			ID:             int64(len(records) + 1),
			DepartmentName: strings.TrimSpace(cell(row, "department_name")),
		}
		if raw := strings.TrimSpace(cell(row, "id")); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("feedback csv line %d: invalid id %q", line, raw)
			}
			rec.ID = id
		}
		if rec.Date, err = domain.ParseDate(cell(row, "date")); err != nil {
			return nil, fmt.Errorf("feedback csv line %d: %w", line, err)
		}
		if text := cell(row, "feedback_text"); text != "" {
			rec.FeedbackText = domain.StringPtr(text)
		}
		records = append(records, rec)
	}
	return records, nil
}
