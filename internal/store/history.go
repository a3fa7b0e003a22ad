package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rcliao/desk-calc/internal/model"
)

const historyColumns = `id, expression, result, mode, timestamp, is_pinned, session_id`

func (s *SQLiteStore) AddHistory(ctx context.Context, e model.HistoryEntry) (*model.HistoryEntry, error) {
	if !model.ValidModes[e.Mode] {
		return nil, fmt.Errorf("invalid mode %q", e.Mode)
	}
	e.ID = s.newID()
	if e.Timestamp.IsZero() {
		e.Timestamp = now()
	}
	e.Timestamp = e.Timestamp.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, expression, result, mode, timestamp, is_pinned, session_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Expression, e.Result, string(e.Mode), formatTime(e.Timestamp), e.Pinned, nullString(e.SessionID))
	if err != nil {
		return nil, fmt.Errorf("insert history: %w", err)
	}
	s.afterWrite(ctx)
	return &e, nil
}

func (s *SQLiteStore) GetHistory(ctx context.Context, id string) (*model.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM history WHERE id = ?`, id)
	e, err := scanHistory(row)
	if noRows(err) {
		return nil, notFound("history entry", id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) ListHistory(ctx context.Context, p ListHistoryParams) ([]model.HistoryEntry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 100
	}

	where := []string{"1 = 1"}
	args := []interface{}{}
	if p.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, p.SessionID)
	}
	if p.PinnedOnly {
		where = append(where, "is_pinned = 1")
	}

	query := fmt.Sprintf(`SELECT %s FROM history WHERE %s
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?`, historyColumns, strings.Join(where, " AND "))
	args = append(args, limit, p.Offset)

	return s.queryHistory(ctx, query, args...)
}

func (s *SQLiteStore) SearchHistory(ctx context.Context, p SearchHistoryParams) ([]model.HistoryEntry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 100
	}
	term := "%" + escapeLike(p.Query) + "%"

	where := []string{`(expression LIKE ? ESCAPE '\' OR result LIKE ? ESCAPE '\')`}
	args := []interface{}{term, term}
	if p.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, p.SessionID)
	}

	query := fmt.Sprintf(`SELECT %s FROM history WHERE %s
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, historyColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	return s.queryHistory(ctx, query, args...)
}

func (s *SQLiteStore) TogglePin(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE history SET is_pinned = CASE WHEN is_pinned = 1 THEN 0 ELSE 1 END WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("toggle pin: %w", err)
	}
	if rowsAffected(res) == 0 {
		return false, notFound("history entry", id)
	}
	s.afterWrite(ctx)

	var pinned bool
	if err := s.db.QueryRowContext(ctx, `SELECT is_pinned FROM history WHERE id = ?`, id).Scan(&pinned); err != nil {
		return false, err
	}
	return pinned, nil
}

func (s *SQLiteStore) DeleteHistory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if rowsAffected(res) == 0 {
		return notFound("history entry", id)
	}
	s.afterWrite(ctx)
	return nil
}

func (s *SQLiteStore) ClearHistory(ctx context.Context, p ClearHistoryParams) (int, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}
	if p.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, p.SessionID)
	}
	if p.KeepPinned {
		where = append(where, "is_pinned = 0")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE `+strings.Join(where, " AND "), args...)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	s.afterWrite(ctx)
	return rowsAffected(res), nil
}

func (s *SQLiteStore) queryHistory(ctx context.Context, query string, args ...interface{}) ([]model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanHistory(row scanner) (model.HistoryEntry, error) {
	var e model.HistoryEntry
	var mode, ts string
	var sessionID sql.NullString

	if err := row.Scan(&e.ID, &e.Expression, &e.Result, &mode, &ts, &e.Pinned, &sessionID); err != nil {
		return e, err
	}
	e.Mode = model.Mode(mode)
	e.Timestamp = parseTime(ts)
	if sessionID.Valid {
		e.SessionID = sessionID.String
	}
	return e, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
