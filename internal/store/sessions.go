package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/desk-calc/internal/model"
)

const sessionColumns = `id, name, is_default, created_at, updated_at`

func (s *SQLiteStore) CreateSession(ctx context.Context, name string) (*model.Session, error) {
	return s.createSession(ctx, name, false)
}

func (s *SQLiteStore) createSession(ctx context.Context, name string, isDefault bool) (*model.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("session name is empty: %w", ErrInvalidName)
	}
	ts := now()
	sess := &model.Session{
		ID:        s.newID(),
		Name:      name,
		IsDefault: isDefault,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, name, is_default, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.IsDefault, formatTime(ts), formatTime(ts))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("session %q: %w", name, ErrSessionExists)
	}
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	s.afterWrite(ctx)
	return sess, nil
}

// ensureDefaultSession creates the default session when none exists.
func (s *SQLiteStore) ensureDefaultSession(ctx context.Context) (*model.Session, error) {
	sess, err := s.DefaultSession(ctx)
	if err == nil {
		return sess, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	s.logger.Info("creating default session", "name", model.DefaultSessionName)
	return s.createSession(ctx, model.DefaultSessionName, true)
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if noRows(err) {
		return nil, notFound("session", id)
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SQLiteStore) ResolveSession(ctx context.Context, ref string) (*model.Session, error) {
	sess, err := s.GetSession(ctx, ref)
	if err == nil || !isNotFound(err) {
		return sess, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE name = ?`, strings.TrimSpace(ref))
	byName, err := scanSession(row)
	if noRows(err) {
		return nil, notFound("session", ref)
	}
	if err != nil {
		return nil, err
	}
	return &byName, nil
}

func (s *SQLiteStore) DefaultSession(ctx context.Context) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE is_default = 1`)
	sess, err := scanSession(row)
	if noRows(err) {
		return nil, notFound("session", "default")
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context) ([]model.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY is_default DESC, created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) RenameSession(ctx context.Context, id, name string) (*model.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("session name is empty: %w", ErrInvalidName)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET name = ?, updated_at = ? WHERE id = ?`, name, formatTime(now()), id)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("session %q: %w", name, ErrSessionExists)
	}
	if err != nil {
		return nil, fmt.Errorf("rename session: %w", err)
	}
	if rowsAffected(res) == 0 {
		return nil, notFound("session", id)
	}
	s.afterWrite(ctx)
	return s.GetSession(ctx, id)
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if sess.IsDefault {
		return ErrDefaultSession
	}
	// variables cascade, history rows are detached by the foreign key
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ? AND is_default = 0`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.afterWrite(ctx)
	return nil
}

func scanSession(row scanner) (model.Session, error) {
	var sess model.Session
	var created, updated string
	if err := row.Scan(&sess.ID, &sess.Name, &sess.IsDefault, &created, &updated); err != nil {
		return sess, err
	}
	sess.CreatedAt = parseTime(created)
	sess.UpdatedAt = parseTime(updated)
	return sess, nil
}
