package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"feedbackinsight/internal/domain"
)

// SaveAnalysis writes one sentiment_analysis row per record in a single
// transaction. Replace clears the table first.
func (s *Store) SaveAnalysis(ctx context.Context, runID string, records []domain.AnalyzedRecord, mode WriteMode) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if mode == Replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sentiment_analysis`); err != nil {
			return 0, fmt.Errorf("clear sentiment_analysis: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO sentiment_analysis
		 (run_id, feedback_id, department_name, date, feedback_text, clean_feedback, sentiment_label, keywords)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			runID, r.ID, r.DepartmentName, nullTime(r.Date), nullString(r.FeedbackText),
			r.CleanFeedback, string(r.SentimentLabel), r.Keywords.Encode(),
		); err != nil {
			return inserted, fmt.Errorf("insert analysis feedback_id=%d: %w", r.ID, err)
		}
		inserted++
	}
	return inserted, tx.Commit()
}

func (s *Store) SaveKeywordSummary(ctx context.Context, runID string, rows []domain.KeywordSummaryRow, mode WriteMode) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if mode == Replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM keywords_sentiment_summary`); err != nil {
			return 0, fmt.Errorf("clear keywords_sentiment_summary: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO keywords_sentiment_summary (run_id, department, sentiment_label, keyword, count)
		 VALUES (?, ?, ?, ?, ?)`,
	))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, runID, r.Department, string(r.SentimentLabel), r.Keyword, r.Count); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, tx.Commit()
}

// Filter narrows LoadAnalysis. Zero values match everything; To is exclusive.
type Filter struct {
	Department string
	From       time.Time
	To         time.Time
	RunID      string
}

func (f Filter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Department != "" {
		clauses = append(clauses, "department_name = ?")
		args = append(args, f.Department)
	}
	if !f.From.IsZero() {
		clauses = append(clauses, "date >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		clauses = append(clauses, "date < ?")
		args = append(args, f.To.UTC())
	}
	if f.RunID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, f.RunID)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// LoadAnalysis reads persisted analysis rows in insertion order. Stored
// keyword lists are decoded here; a malformed list is an error.
func (s *Store) LoadAnalysis(ctx context.Context, f Filter) ([]domain.AnalyzedRecord, error) {
	where, args := f.where()
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT feedback_id, department_name, date, feedback_text, clean_feedback, sentiment_label, keywords
		 FROM sentiment_analysis`+where+` ORDER BY id`,
	), args...)
	if err != nil {
		return nil, fmt.Errorf("load analysis: %w", err)
	}
	defer rows.Close()

	var out []domain.AnalyzedRecord
	for rows.Next() {
		var (
			r        domain.AnalyzedRecord
			date     any
			text     sql.NullString
			label    string
			keywords sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.DepartmentName, &date, &text, &r.CleanFeedback, &label, &keywords); err != nil {
			return nil, err
		}
		if r.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("analysis feedback_id=%d: %w", r.ID, err)
		}
		if text.Valid {
			r.FeedbackText = domain.StringPtr(text.String)
		}
		r.SentimentLabel = domain.ParseSentiment(label)
		if r.Keywords, err = domain.ParseKeywordList(keywords.String); err != nil {
			return nil, fmt.Errorf("analysis feedback_id=%d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestRunID returns the run id of the most recently inserted analysis row,
// or "" when the table is empty.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx, `SELECT run_id FROM sentiment_analysis ORDER BY id DESC LIMIT 1`).Scan(&runID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return runID, err
}

// LoadKeywordSummary reads persisted summary rows, optionally for one
// department and run.
func (s *Store) LoadKeywordSummary(ctx context.Context, department, runID string) ([]domain.KeywordSummaryRow, error) {
	var clauses []string
	var args []any
	if department != "" {
		clauses = append(clauses, "department = ?")
		args = append(args, department)
	}
	if runID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, runID)
	}
	query := `SELECT department, sentiment_label, keyword, count FROM keywords_sentiment_summary`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(query+` ORDER BY id`), args...)
	if err != nil {
		return nil, fmt.Errorf("load keyword summary: %w", err)
	}
	defer rows.Close()

	var out []domain.KeywordSummaryRow
	for rows.Next() {
		var r domain.KeywordSummaryRow
		var label string
		if err := rows.Scan(&r.Department, &label, &r.Keyword, &r.Count); err != nil {
			return nil, err
		}
		r.SentimentLabel = domain.ParseSentiment(label)
		out = append(out, r)
	}
	return out, rows.Err()
}
