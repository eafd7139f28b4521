package store

import (
	"context"
	"fmt"

	"github.com/harrison/flagwise/internal/models"
)

// SaveChatMessage appends a message to the transcript.
func (s *Store) SaveChatMessage(ctx context.Context, m models.ChatMessage) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid chat message: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO chat_messages (id, role, content, timestamp) VALUES (?, ?, ?, ?)`,
		m.ID, string(m.Role), m.Content, formatTime(m.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// ChatHistory returns the transcript in the order it was written.
func (s *Store) ChatHistory(ctx context.Context) ([]models.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, role, content, timestamp FROM chat_messages ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer rows.Close()

	history := []models.ChatMessage{}
	for rows.Next() {
		var (
			m        models.ChatMessage
			role, ts string
		)
		if err := rows.Scan(&m.ID, &role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		t, err := parseTime(ts)
		if err != nil {
			return nil, err
		}
		m.Role = models.Role(role)
		m.Timestamp = t
		history = append(history, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat history: %w", err)
	}
	return history, nil
}

// ClearChatHistory deletes the whole transcript.
func (s *Store) ClearChatHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}
	return nil
}
