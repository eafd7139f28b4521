package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/harrison/flagwise/internal/models"
)

// SavePath stores a completed exploration.
func (s *Store) SavePath(ctx context.Context, p models.ConversationPath) error {
	nodes, err := json.Marshal(p.Nodes)
	if err != nil {
		return fmt.Errorf("failed to marshal nodes: %w", err)
	}
	insights := p.Insights
	if insights == nil {
		insights = []string{}
	}
	insightsJSON, err := json.Marshal(insights)
	if err != nil {
		return fmt.Errorf("failed to marshal insights: %w", err)
	}

	var end sql.NullString
	if p.EndTime != nil {
		end = sql.NullString{String: formatTime(*p.EndTime), Valid: true}
	}
	var score sql.NullInt64
	if p.Score != nil {
		score = sql.NullInt64{Int64: int64(*p.Score), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO conversation_paths
		(id, nodes, start_time, end_time, conclusion, insights, score)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(nodes), formatTime(p.StartTime), end, p.Conclusion, string(insightsJSON), score)
	if err != nil {
		return fmt.Errorf("failed to insert conversation path: %w", err)
	}
	return nil
}

// Paths returns stored explorations, oldest first.
func (s *Store) Paths(ctx context.Context) ([]models.ConversationPath, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, nodes, start_time, end_time, conclusion, insights, score
		FROM conversation_paths ORDER BY start_time, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation paths: %w", err)
	}
	defer rows.Close()

	paths := []models.ConversationPath{}
	for rows.Next() {
		var (
			p               models.ConversationPath
			nodes, insights string
			start           string
			end             sql.NullString
			score           sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &nodes, &start, &end, &p.Conclusion, &insights, &score); err != nil {
			return nil, fmt.Errorf("failed to scan conversation path: %w", err)
		}
		if err := json.Unmarshal([]byte(nodes), &p.Nodes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal nodes for %s: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(insights), &p.Insights); err != nil {
			return nil, fmt.Errorf("failed to unmarshal insights for %s: %w", p.ID, err)
		}
		t, err := parseTime(start)
		if err != nil {
			return nil, err
		}
		p.StartTime = t
		if end.Valid {
			et, err := parseTime(end.String)
			if err != nil {
				return nil, err
			}
			p.EndTime = &et
		}
		if score.Valid {
			v := int(score.Int64)
			p.Score = &v
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversation paths: %w", err)
	}
	return paths, nil
}
