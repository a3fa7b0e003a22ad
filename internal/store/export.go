package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/desk-calc/internal/model"
)

// ExportFormatVersion is written into every session export.
const ExportFormatVersion = 1

// SessionExport is a self-contained copy of one session.
type SessionExport struct {
	Version    int                  `json:"version" yaml:"version"`
	ExportedAt time.Time            `json:"exported_at" yaml:"exported_at"`
	Session    model.Session        `json:"session" yaml:"session"`
	Variables  []model.Variable     `json:"variables" yaml:"variables"`
	History    []model.HistoryEntry `json:"history" yaml:"history"`
}

// ExportSession returns a session with its variables and history, oldest
// history first.
func (s *SQLiteStore) ExportSession(ctx context.Context, sessionID string) (*SessionExport, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	vars, err := s.ListVariables(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	history, err := s.queryHistory(ctx,
		`SELECT `+historyColumns+` FROM history WHERE session_id = ? ORDER BY timestamp, id`, sess.ID)
	if err != nil {
		return nil, err
	}
	return &SessionExport{
		Version:    ExportFormatVersion,
		ExportedAt: now(),
		Session:    *sess,
		Variables:  vars,
		History:    history,
	}, nil
}

// ImportSession creates a new session from an export. An empty name keeps
// the exported name. All rows get fresh IDs; the whole import is one
// transaction.
func (s *SQLiteStore) ImportSession(ctx context.Context, doc *SessionExport, name string) (*model.Session, error) {
	if doc == nil {
		return nil, fmt.Errorf("empty export document")
	}
	if doc.Version > ExportFormatVersion {
		return nil, fmt.Errorf("unsupported export version %d", doc.Version)
	}
	if name = strings.TrimSpace(name); name == "" {
		name = strings.TrimSpace(doc.Session.Name)
	}
	if name == "" {
		return nil, fmt.Errorf("session name is empty: %w", ErrInvalidName)
	}
	for _, v := range doc.Variables {
		if !model.ValidIdentifier(v.Name) {
			return nil, fmt.Errorf("variable %q: %w", v.Name, ErrInvalidName)
		}
	}
	for _, e := range doc.History {
		if !model.ValidModes[e.Mode] {
			return nil, fmt.Errorf("history entry %q: invalid mode %q", e.ID, e.Mode)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ts := now()
	sess := &model.Session{ID: s.newID(), Name: name, CreatedAt: ts, UpdatedAt: ts}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, name, is_default, created_at, updated_at) VALUES (?, ?, 0, ?, ?)`,
		sess.ID, sess.Name, formatTime(ts), formatTime(ts))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("session %q: %w", name, ErrSessionExists)
	}
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	for _, v := range doc.Variables {
		updated := v.UpdatedAt
		if updated.IsZero() {
			updated = ts
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO variables (id, session_id, name, value, updated_at) VALUES (?, ?, ?, ?, ?)`,
			s.newID(), sess.ID, v.Name, v.Value, formatTime(updated)); err != nil {
			return nil, fmt.Errorf("insert variable %q: %w", v.Name, err)
		}
	}

	for _, e := range doc.History {
		stamp := e.Timestamp
		if stamp.IsZero() {
			stamp = ts
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO history (id, expression, result, mode, timestamp, is_pinned, session_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.newID(), e.Expression, e.Result, string(e.Mode), formatTime(stamp), e.Pinned, sess.ID); err != nil {
			return nil, fmt.Errorf("insert history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	s.logger.Info("session imported", "session", sess.ID, "variables", len(doc.Variables), "history", len(doc.History))
	s.afterWrite(ctx)
	return sess, nil
}
