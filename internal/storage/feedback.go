package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"feedbackinsight/internal/domain"
)

const DefaultSourceQuery = "SELECT id, department_name, date, feedback_text FROM feedback_enriched"

// LoadFeedback runs query against the source table. The query must return
// either (id, department_name, date, feedback_text) or the last three columns
// only, in which case ids are assigned by row position starting at 1.
func (s *Store) LoadFeedback(ctx context.Context, query string) ([]domain.FeedbackRecord, error) {
	if strings.TrimSpace(query) == "" {
		query = DefaultSourceQuery
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("load feedback columns: %w", err)
	}
	if len(cols) != 3 && len(cols) != 4 {
		return nil, fmt.Errorf("load feedback: query returned %d columns %v, want 3 or 4", len(cols), cols)
	}

	var records []domain.FeedbackRecord
	for rows.Next() {
		var (
			id   sql.NullInt64
			dept sql.NullString
			date any
			text sql.NullString
		)
		dest := []any{&dept, &date, &text}
		if len(cols) == 4 {
			dest = append([]any{&id}, dest...)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan feedback row %d: %w", len(records)+1, err)
		}
		rec := domain.FeedbackRecord{
			ID:             int64(len(records) + 1),
			DepartmentName: dept.String,
		}
		if id.Valid {
			rec.ID = id.Int64
		}
		if text.Valid {
			rec.FeedbackText = domain.StringPtr(text.String)
		}
		rec.Date, err = parseDate(date)
		if err != nil {
			return nil, fmt.Errorf("feedback row %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ImportFeedback seeds the source table. Ids are assigned by the database.
func (s *Store) ImportFeedback(ctx context.Context, records []domain.FeedbackRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO feedback_enriched (department_name, date, feedback_text) VALUES (?, ?, ?)`,
	))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.DepartmentName, nullTime(r.Date), nullString(r.FeedbackText)); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, tx.Commit()
}

// parseDate accepts whatever the driver hands back for a date column.
func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return d, nil
	case []byte:
		return domain.ParseDate(string(d))
	case string:
		return domain.ParseDate(d)
	case int64:
		return time.Unix(d, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %T", v)
	}
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
