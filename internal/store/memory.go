package store

import (
	"context"
	"fmt"

	"github.com/rcliao/desk-calc/internal/model"
)

func (s *SQLiteStore) SetMemory(ctx context.Context, slot, value string) error {
	if slot == "" {
		return fmt.Errorf("memory slot: %w", ErrInvalidName)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memory (slot_name, value, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot_name) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`,
		slot, value, formatTime(now()))
	if err != nil {
		return fmt.Errorf("set memory: %w", err)
	}
	s.afterWrite(ctx)
	return nil
}

func (s *SQLiteStore) GetMemory(ctx context.Context, slot string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM memory WHERE slot_name = ?`, slot).Scan(&value)
	if noRows(err) {
		return "", notFound("memory slot", slot)
	}
	return value, err
}

func (s *SQLiteStore) ClearMemory(ctx context.Context, slot string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM memory WHERE slot_name = ?`, slot); err != nil {
		return fmt.Errorf("clear memory: %w", err)
	}
	s.afterWrite(ctx)
	return nil
}

func (s *SQLiteStore) AllMemory(ctx context.Context) ([]model.MemorySlot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot_name, value, created_at FROM memory ORDER BY created_at DESC, slot_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.MemorySlot
	for rows.Next() {
		var m model.MemorySlot
		var created string
		if err := rows.Scan(&m.SlotName, &m.Value, &created); err != nil {
			return nil, err
		}
		m.CreatedAt = parseTime(created)
		slots = append(slots, m)
	}
	return slots, rows.Err()
}
