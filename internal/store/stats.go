package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath         string         `json:"db_path"`
	DBSizeBytes    int64          `json:"db_size_bytes"`
	SchemaVersion  int64          `json:"schema_version"`
	HistoryEntries int            `json:"history_entries"`
	PinnedEntries  int            `json:"pinned_entries"`
	MemorySlots    int            `json:"memory_slots"`
	Sessions       []SessionStats `json:"sessions"`
	Backups        []BackupInfo   `json:"backups,omitempty"`
}

// SessionStats holds per-session counts.
type SessionStats struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	History   int    `json:"history"`
	Variables int    `json:"variables"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path}

	if s.path != "" {
		if info, err := os.Stat(s.path); err == nil {
			st.DBSizeBytes = info.Size()
		}
	}

	version, err := s.MigrationVersion()
	if err != nil {
		return st, err
	}
	st.SchemaVersion = version

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&st.HistoryEntries); err != nil {
		return st, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history WHERE is_pinned = 1`).Scan(&st.PinnedEntries); err != nil {
		return st, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory`).Scan(&st.MemorySlots); err != nil {
		return st, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.is_default,
		       (SELECT COUNT(*) FROM history h WHERE h.session_id = s.id),
		       (SELECT COUNT(*) FROM variables v WHERE v.session_id = s.id)
		FROM sessions s ORDER BY s.is_default DESC, s.created_at, s.id`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ss SessionStats
		if err := rows.Scan(&ss.ID, &ss.Name, &ss.IsDefault, &ss.History, &ss.Variables); err != nil {
			return st, err
		}
		st.Sessions = append(st.Sessions, ss)
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	backups, err := s.Backups()
	if err != nil {
		s.logger.Warn("list snapshots", "err", err)
	}
	st.Backups = backups

	return st, nil
}
