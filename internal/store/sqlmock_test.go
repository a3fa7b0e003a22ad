package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/desk-calc/internal/model"
)

func TestStoreErrorPaths(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		call      func(s *SQLiteStore) error
		is        error
		errMsg    string
	}{
		{
			name: "insert history fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO history").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.AddHistory(context.Background(), model.HistoryEntry{Expression: "1", Result: "1", Mode: model.ModeStandard})
				return err
			},
			is:     assert.AnError,
			errMsg: "insert history",
		},
		{
			name: "delete of missing entry",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM history").WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			call: func(s *SQLiteStore) error {
				return s.DeleteHistory(context.Background(), "gone")
			},
			is: ErrNotFound,
		},
		{
			name: "setting lookup fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT value FROM settings").WithArgs("theme").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.GetSetting(context.Background(), "theme")
				return err
			},
			is: assert.AnError,
		},
		{
			name: "missing setting",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT value FROM settings").WithArgs("theme").
					WillReturnRows(sqlmock.NewRows([]string{"value"}))
			},
			call: func(s *SQLiteStore) error {
				_, err := s.GetSetting(context.Background(), "theme")
				return err
			},
			is: ErrNotFound,
		},
		{
			name: "session name taken",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO sessions").
					WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: sessions.name (2067)"))
			},
			call: func(s *SQLiteStore) error {
				_, err := s.CreateSession(context.Background(), "dup")
				return err
			},
			is: ErrSessionExists,
		},
		{
			name: "clear variables fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM variables").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.ClearVariables(context.Background(), "sess")
				return err
			},
			is:     assert.AnError,
			errMsg: "clear variables",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setupMock(mock)
			s := newStore(db, Options{})

			err = tt.call(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
