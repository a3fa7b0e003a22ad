package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/desk-calc/internal/model"
	"github.com/rcliao/desk-calc/internal/testutil"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"), Options{Logger: testutil.Logger(t)})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndGetHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, err := s.AddHistory(ctx, model.HistoryEntry{Expression: "2+2", Result: "4", Mode: model.ModeStandard})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if e.ID == "" {
		t.Error("expected non-empty ID")
	}
	if e.Timestamp.IsZero() {
		t.Error("expected timestamp to be filled in")
	}

	got, err := s.GetHistory(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Expression != "2+2" || got.Result != "4" || got.Mode != model.ModeStandard {
		t.Errorf("unexpected entry: %+v", got)
	}
	if got.Pinned {
		t.Error("new entry should not be pinned")
	}
	if !got.Timestamp.Equal(e.Timestamp) {
		t.Errorf("timestamp round trip: got %v, want %v", got.Timestamp, e.Timestamp)
	}
}

func TestAddHistoryRejectsUnknownMode(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddHistory(context.Background(), model.HistoryEntry{Expression: "1", Result: "1", Mode: "graphing"})
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestGetHistoryNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetHistory(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, expr := range []string{"1+1", "2+2", "3+3"} {
		_, err := s.AddHistory(ctx, model.HistoryEntry{
			Expression: expr, Result: "x", Mode: model.ModeStandard,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("add %s: %v", expr, err)
		}
	}

	entries, err := s.ListHistory(ctx, ListHistoryParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Expression != "3+3" || entries[2].Expression != "1+1" {
		t.Errorf("wrong order: %s, %s, %s", entries[0].Expression, entries[1].Expression, entries[2].Expression)
	}

	page, _ := s.ListHistory(ctx, ListHistoryParams{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].Expression != "2+2" {
		t.Errorf("expected second entry on page 2, got %+v", page)
	}
}

func TestListHistoryFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	def, err := s.DefaultSession(ctx)
	if err != nil {
		t.Fatalf("default session: %v", err)
	}
	other, err := s.CreateSession(ctx, "work")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	s.AddHistory(ctx, model.HistoryEntry{Expression: "1", Result: "1", Mode: model.ModeStandard, SessionID: def.ID})
	pinned, _ := s.AddHistory(ctx, model.HistoryEntry{Expression: "2", Result: "2", Mode: model.ModeStandard, SessionID: other.ID})
	s.AddHistory(ctx, model.HistoryEntry{Expression: "3", Result: "3", Mode: model.ModeStandard, SessionID: other.ID})
	if _, err := s.TogglePin(ctx, pinned.ID); err != nil {
		t.Fatalf("pin: %v", err)
	}

	bySession, _ := s.ListHistory(ctx, ListHistoryParams{SessionID: other.ID})
	if len(bySession) != 2 {
		t.Errorf("expected 2 entries in session, got %d", len(bySession))
	}
	onlyPinned, _ := s.ListHistory(ctx, ListHistoryParams{PinnedOnly: true})
	if len(onlyPinned) != 1 || onlyPinned[0].ID != pinned.ID {
		t.Errorf("expected only the pinned entry, got %+v", onlyPinned)
	}
}

func TestSearchHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AddHistory(ctx, model.HistoryEntry{Expression: "sqrt(16)", Result: "4", Mode: model.ModeScientific})
	s.AddHistory(ctx, model.HistoryEntry{Expression: "50%3", Result: "2", Mode: model.ModeStandard})
	s.AddHistory(ctx, model.HistoryEntry{Expression: "100*4", Result: "400", Mode: model.ModeStandard})

	got, err := s.SearchHistory(ctx, SearchHistoryParams{Query: "sqrt"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Expression != "sqrt(16)" {
		t.Errorf("expected sqrt entry, got %+v", got)
	}

	// matches results too
	got, _ = s.SearchHistory(ctx, SearchHistoryParams{Query: "4"})
	if len(got) != 2 {
		t.Errorf("expected 2 matches for '4', got %d", len(got))
	}

	// % is literal, not a wildcard
	got, _ = s.SearchHistory(ctx, SearchHistoryParams{Query: "%"})
	if len(got) != 1 || got[0].Expression != "50%3" {
		t.Errorf("expected only the modulo entry, got %+v", got)
	}
}

func TestTogglePin(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, _ := s.AddHistory(ctx, model.HistoryEntry{Expression: "1+1", Result: "2", Mode: model.ModeStandard})

	pinned, err := s.TogglePin(ctx, e.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !pinned {
		t.Error("expected pinned after first toggle")
	}
	pinned, _ = s.TogglePin(ctx, e.ID)
	if pinned {
		t.Error("expected unpinned after second toggle")
	}

	if _, err := s.TogglePin(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAndClearHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.AddHistory(ctx, model.HistoryEntry{Expression: "1", Result: "1", Mode: model.ModeStandard})
	b, _ := s.AddHistory(ctx, model.HistoryEntry{Expression: "2", Result: "2", Mode: model.ModeStandard})
	s.AddHistory(ctx, model.HistoryEntry{Expression: "3", Result: "3", Mode: model.ModeStandard})

	if err := s.DeleteHistory(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteHistory(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}

	s.TogglePin(ctx, b.ID)
	n, err := s.ClearHistory(ctx, ClearHistoryParams{KeepPinned: true})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 cleared, got %d", n)
	}
	left, _ := s.ListHistory(ctx, ListHistoryParams{})
	if len(left) != 1 || left[0].ID != b.ID {
		t.Errorf("expected pinned entry to survive, got %+v", left)
	}

	n, _ = s.ClearHistory(ctx, ClearHistoryParams{})
	if n != 1 {
		t.Errorf("expected 1 cleared, got %d", n)
	}
}

func TestDefaultSettings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	all, err := s.AllSettings(ctx)
	if err != nil {
		t.Fatalf("all settings: %v", err)
	}
	defaults := map[string]string{
		model.SettingTheme:           "system",
		model.SettingScatteredKeypad: "false",
		model.SettingMode:            string(model.ModeStandard),
		model.SettingNumberFormat:    "international",
	}
	for k, want := range defaults {
		if all[k] != want {
			t.Errorf("setting %s: got %q, want %q", k, all[k], want)
		}
	}
}

func TestSetSetting(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.SetSetting(ctx, model.SettingTheme, "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetSetting(ctx, model.SettingTheme, "light"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, err := s.GetSetting(ctx, model.SettingTheme)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "light" {
		t.Errorf("expected 'light', got %q", v)
	}

	if _, err := s.GetSetting(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.SetSetting(ctx, "", "x"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestMemorySlots(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.SetMemory(ctx, "M1", "42"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.SetMemory(ctx, "M2", "7")
	s.SetMemory(ctx, "M1", "43")

	v, err := s.GetMemory(ctx, "M1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "43" {
		t.Errorf("expected '43', got %q", v)
	}

	all, _ := s.AllMemory(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(all))
	}
	if all[0].SlotName != "M1" {
		t.Errorf("expected most recently written slot first, got %s", all[0].SlotName)
	}

	if err := s.ClearMemory(ctx, "M1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.GetMemory(ctx, "M1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "calc.db")

	s, err := NewSQLiteStore(path, Options{DisableBackups: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.AddHistory(ctx, model.HistoryEntry{Expression: "6*7", Result: "42", Mode: model.ModeStandard})
	first, _ := s.DefaultSession(ctx)
	s.Close()

	s, err = NewSQLiteStore(path, Options{DisableBackups: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	entries, _ := s.ListHistory(ctx, ListHistoryParams{})
	if len(entries) != 1 || entries[0].Result != "42" {
		t.Errorf("expected persisted entry, got %+v", entries)
	}
	second, _ := s.DefaultSession(ctx)
	if first.ID != second.ID {
		t.Errorf("default session changed across reopen: %s != %s", first.ID, second.ID)
	}
}
