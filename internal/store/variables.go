package store

import (
	"context"
	"fmt"

	"github.com/rcliao/desk-calc/internal/model"
)

func (s *SQLiteStore) SetVariable(ctx context.Context, sessionID, name, value string) (*model.Variable, error) {
	if !model.ValidIdentifier(name) {
		return nil, fmt.Errorf("variable %q: %w", name, ErrInvalidName)
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO variables (id, session_id, name, value, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.newID(), sessionID, name, value, formatTime(ts))
	if err != nil {
		return nil, fmt.Errorf("set variable: %w", err)
	}
	s.afterWrite(ctx)
	return s.GetVariable(ctx, sessionID, name)
}

func (s *SQLiteStore) GetVariable(ctx context.Context, sessionID, name string) (*model.Variable, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, name, value, updated_at FROM variables WHERE session_id = ? AND name = ?`,
		sessionID, name)
	v, err := scanVariable(row)
	if noRows(err) {
		return nil, notFound("variable", name)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *SQLiteStore) ListVariables(ctx context.Context, sessionID string) ([]model.Variable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, name, value, updated_at FROM variables WHERE session_id = ? ORDER BY name`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vars []model.Variable
	for rows.Next() {
		v, err := scanVariable(rows)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return vars, rows.Err()
}

func (s *SQLiteStore) DeleteVariable(ctx context.Context, sessionID, name string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM variables WHERE session_id = ? AND name = ?`, sessionID, name)
	if err != nil {
		return fmt.Errorf("delete variable: %w", err)
	}
	if rowsAffected(res) == 0 {
		return notFound("variable", name)
	}
	s.afterWrite(ctx)
	return nil
}

func (s *SQLiteStore) ClearVariables(ctx context.Context, sessionID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM variables WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("clear variables: %w", err)
	}
	s.afterWrite(ctx)
	return rowsAffected(res), nil
}

// VariableMap returns a session's variables as a name to value map.
func VariableMap(vars []model.Variable) map[string]string {
	m := make(map[string]string, len(vars))
	for _, v := range vars {
		m[v.Name] = v.Value
	}
	return m
}

func scanVariable(row scanner) (model.Variable, error) {
	var v model.Variable
	var updated string
	if err := row.Scan(&v.ID, &v.SessionID, &v.Name, &v.Value, &updated); err != nil {
		return v, err
	}
	v.UpdatedAt = parseTime(updated)
	return v, nil
}
