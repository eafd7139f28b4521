package store

import (
	"database/sql"
	"fmt"
)

// Migration is one forward-only schema change.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Journal, chat transcript and settings",
		SQL: `
CREATE TABLE IF NOT EXISTS journal_entries (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL,
    content TEXT NOT NULL,
    mood INTEGER NOT NULL,
    emotions TEXT NOT NULL DEFAULT '[]',
    context TEXT NOT NULL,
    analysis TEXT
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_date ON journal_entries(date DESC);

CREATE TABLE IF NOT EXISTS chat_messages (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    timestamp TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "Completed guided explorations",
		SQL: `
CREATE TABLE IF NOT EXISTS conversation_paths (
    id TEXT PRIMARY KEY,
    nodes TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time TEXT,
    conclusion TEXT NOT NULL DEFAULT '',
    insights TEXT NOT NULL DEFAULT '[]',
    score INTEGER
);

CREATE INDEX IF NOT EXISTS idx_conversation_paths_start ON conversation_paths(start_time);
`,
	},
}

// ApplyMigrations applies every pending migration inside one transaction.
func (s *Store) ApplyMigrations() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	applied, err := appliedVersions(tx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}
	return nil
}

func appliedVersions(tx *sql.Tx) (map[int]bool, error) {
	rows, err := tx.Query(`SELECT version FROM schema_version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schema versions: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// LatestVersion returns the highest applied migration version.
func (s *Store) LatestVersion() (int, error) {
	var version int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to query latest version: %w", err)
	}
	return version, nil
}
