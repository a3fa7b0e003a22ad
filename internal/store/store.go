// Package store provides the calculator storage interfaces and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/desk-calc/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDefaultSession is returned when deleting the default session.
	ErrDefaultSession = errors.New("the default session cannot be deleted")
	// ErrSessionExists is returned when a session name is already taken.
	ErrSessionExists = errors.New("session name already exists")
	// ErrInvalidName is returned for empty session names and non-identifier variable names.
	ErrInvalidName = errors.New("invalid name")
)

// ListHistoryParams holds parameters for listing history.
type ListHistoryParams struct {
	Limit      int // 0 means 100
	Offset     int
	SessionID  string
	PinnedOnly bool
}

// SearchHistoryParams holds parameters for searching history.
type SearchHistoryParams struct {
	Query     string
	SessionID string
	Limit     int // 0 means 100
}

// ClearHistoryParams holds parameters for bulk history deletion.
type ClearHistoryParams struct {
	SessionID  string // empty clears every session
	KeepPinned bool
}

// HistoryStore records calculations.
type HistoryStore interface {
	// AddHistory appends an entry. ID and a zero Timestamp are filled in.
	AddHistory(ctx context.Context, e model.HistoryEntry) (*model.HistoryEntry, error)
	GetHistory(ctx context.Context, id string) (*model.HistoryEntry, error)
	// ListHistory returns entries newest first.
	ListHistory(ctx context.Context, p ListHistoryParams) ([]model.HistoryEntry, error)
	SearchHistory(ctx context.Context, p SearchHistoryParams) ([]model.HistoryEntry, error)
	// TogglePin flips the pinned flag and returns the new state.
	TogglePin(ctx context.Context, id string) (bool, error)
	DeleteHistory(ctx context.Context, id string) error
	// ClearHistory deletes entries and returns how many were removed.
	ClearHistory(ctx context.Context, p ClearHistoryParams) (int, error)
}

// SettingsStore holds process-wide key/value settings.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) (map[string]string, error)
}

// MemoryStore holds named memory slots.
type MemoryStore interface {
	SetMemory(ctx context.Context, slot, value string) error
	GetMemory(ctx context.Context, slot string) (string, error)
	ClearMemory(ctx context.Context, slot string) error
	AllMemory(ctx context.Context) ([]model.MemorySlot, error)
}

// SessionStore manages sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, name string) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	// ResolveSession finds a session by ID or, failing that, by name.
	ResolveSession(ctx context.Context, ref string) (*model.Session, error)
	// ListSessions returns the default session first, then by creation time.
	ListSessions(ctx context.Context) ([]model.Session, error)
	RenameSession(ctx context.Context, id, name string) (*model.Session, error)
	// DeleteSession removes a session and its variables. History rows are kept
	// and detached.
	DeleteSession(ctx context.Context, id string) error
	DefaultSession(ctx context.Context) (*model.Session, error)
}

// VariableStore manages per-session variables.
type VariableStore interface {
	// SetVariable creates or overwrites a variable.
	SetVariable(ctx context.Context, sessionID, name, value string) (*model.Variable, error)
	GetVariable(ctx context.Context, sessionID, name string) (*model.Variable, error)
	// ListVariables returns a session's variables ordered by name.
	ListVariables(ctx context.Context, sessionID string) ([]model.Variable, error)
	DeleteVariable(ctx context.Context, sessionID, name string) error
	ClearVariables(ctx context.Context, sessionID string) (int, error)
}

// Store is the full calculator persistence interface.
type Store interface {
	HistoryStore
	SettingsStore
	MemoryStore
	SessionStore
	VariableStore

	// Close closes the store.
	Close() error
}
