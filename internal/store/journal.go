package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harrison/flagwise/internal/models"
)

// SaveJournalEntry validates and inserts or replaces an entry.
func (s *Store) SaveJournalEntry(ctx context.Context, e *models.JournalEntry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid journal entry: %w", err)
	}

	emotions := e.Emotions
	if emotions == nil {
		emotions = []string{}
	}
	emotionsJSON, err := json.Marshal(emotions)
	if err != nil {
		return fmt.Errorf("failed to marshal emotions: %w", err)
	}

	var analysis sql.NullString
	if e.Analysis != nil {
		data, err := json.Marshal(e.Analysis)
		if err != nil {
			return fmt.Errorf("failed to marshal analysis: %w", err)
		}
		analysis = sql.NullString{String: string(data), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO journal_entries
		(id, date, content, mood, emotions, context, analysis)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, formatTime(e.Date), e.Content, e.Mood, string(emotionsJSON), string(e.Context), analysis)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

// JournalEntries returns every entry, newest first.
func (s *Store) JournalEntries(ctx context.Context) ([]models.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, content, mood, emotions, context, analysis
		FROM journal_entries ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal entries: %w", err)
	}
	return entries, nil
}

// JournalEntry returns one entry by id.
func (s *Store) JournalEntry(ctx context.Context, id string) (models.JournalEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, date, content, mood, emotions, context, analysis
		FROM journal_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JournalEntry{}, fmt.Errorf("journal entry %s: %w", id, ErrNotFound)
	}
	return e, err
}

// DeleteJournalEntry removes an entry. Deleting an unknown id is ErrNotFound.
func (s *Store) DeleteJournalEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("journal entry %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (models.JournalEntry, error) {
	var (
		e            models.JournalEntry
		date, ctxStr string
		emotions     string
		analysis     sql.NullString
	)
	if err := sc.Scan(&e.ID, &date, &e.Content, &e.Mood, &emotions, &ctxStr, &analysis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("failed to scan journal entry: %w", err)
	}

	t, err := parseTime(date)
	if err != nil {
		return e, err
	}
	e.Date = t
	e.Context = models.ParseContext(ctxStr)

	if err := json.Unmarshal([]byte(emotions), &e.Emotions); err != nil {
		return e, fmt.Errorf("failed to unmarshal emotions for %s: %w", e.ID, err)
	}
	if len(e.Emotions) == 0 {
		e.Emotions = nil
	}
	if analysis.Valid {
		e.Analysis = &models.AnalysisResult{}
		if err := json.Unmarshal([]byte(analysis.String), e.Analysis); err != nil {
			return e, fmt.Errorf("failed to unmarshal analysis for %s: %w", e.ID, err)
		}
	}
	return e, nil
}
