package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rcliao/desk-calc/internal/model"
)

func TestDefaultSessionExists(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	def, err := s.DefaultSession(ctx)
	if err != nil {
		t.Fatalf("default session: %v", err)
	}
	if !def.IsDefault || def.Name != model.DefaultSessionName {
		t.Errorf("unexpected default session: %+v", def)
	}

	sessions, _ := s.ListSessions(ctx)
	if len(sessions) != 1 {
		t.Errorf("expected exactly one session, got %d", len(sessions))
	}
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sess, err := s.CreateSession(ctx, "  budget  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.Name != "budget" {
		t.Errorf("expected trimmed name, got %q", sess.Name)
	}
	if sess.IsDefault {
		t.Error("new session should not be default")
	}

	if _, err := s.CreateSession(ctx, "budget"); !errors.Is(err, ErrSessionExists) {
		t.Errorf("expected ErrSessionExists, got %v", err)
	}
	if _, err := s.CreateSession(ctx, "   "); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}

	sessions, _ := s.ListSessions(ctx)
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if !sessions[0].IsDefault {
		t.Error("expected default session listed first")
	}
}

func TestResolveSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sess, _ := s.CreateSession(ctx, "taxes")

	byID, err := s.ResolveSession(ctx, sess.ID)
	if err != nil || byID.ID != sess.ID {
		t.Errorf("resolve by id: %+v, %v", byID, err)
	}
	byName, err := s.ResolveSession(ctx, "taxes")
	if err != nil || byName.ID != sess.ID {
		t.Errorf("resolve by name: %+v, %v", byName, err)
	}
	if _, err := s.ResolveSession(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRenameSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.CreateSession(ctx, "a")
	s.CreateSession(ctx, "b")

	renamed, err := s.RenameSession(ctx, a.ID, "alpha")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "alpha" {
		t.Errorf("expected 'alpha', got %q", renamed.Name)
	}
	if _, err := s.RenameSession(ctx, a.ID, "b"); !errors.Is(err, ErrSessionExists) {
		t.Errorf("expected ErrSessionExists, got %v", err)
	}
	if _, err := s.RenameSession(ctx, "missing", "c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sess, _ := s.CreateSession(ctx, "scratch")
	if _, err := s.SetVariable(ctx, sess.ID, "x", "5"); err != nil {
		t.Fatalf("set variable: %v", err)
	}
	e, _ := s.AddHistory(ctx, model.HistoryEntry{Expression: "x*2", Result: "10", Mode: model.ModeStandard, SessionID: sess.ID})

	if err := s.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetSession(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected session gone, got %v", err)
	}

	// variables cascade
	var n int
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM variables WHERE session_id = ?`, sess.ID).Scan(&n)
	if n != 0 {
		t.Errorf("expected variables deleted, %d left", n)
	}

	// history is kept and detached
	got, err := s.GetHistory(ctx, e.ID)
	if err != nil {
		t.Fatalf("history entry should survive: %v", err)
	}
	if got.SessionID != "" {
		t.Errorf("expected detached history, got session %q", got.SessionID)
	}
}

func TestDeleteDefaultSessionRefused(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	def, _ := s.DefaultSession(ctx)
	if err := s.DeleteSession(ctx, def.ID); !errors.Is(err, ErrDefaultSession) {
		t.Errorf("expected ErrDefaultSession, got %v", err)
	}
	if err := s.DeleteSession(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestVariables(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	def, _ := s.DefaultSession(ctx)
	other, _ := s.CreateSession(ctx, "other")

	if _, err := s.SetVariable(ctx, def.ID, "rate", "0.2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.SetVariable(ctx, def.ID, "base", "100")
	s.SetVariable(ctx, other.ID, "rate", "0.5")

	v, err := s.SetVariable(ctx, def.ID, "rate", "0.25")
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v.Value != "0.25" {
		t.Errorf("expected overwritten value, got %q", v.Value)
	}

	vars, _ := s.ListVariables(ctx, def.ID)
	if len(vars) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(vars))
	}
	if vars[0].Name != "base" || vars[1].Name != "rate" {
		t.Errorf("expected name order, got %s, %s", vars[0].Name, vars[1].Name)
	}
	m := VariableMap(vars)
	if m["rate"] != "0.25" || m["base"] != "100" {
		t.Errorf("unexpected map: %v", m)
	}

	o, _ := s.GetVariable(ctx, other.ID, "rate")
	if o.Value != "0.5" {
		t.Errorf("variables must be scoped per session, got %q", o.Value)
	}

	if err := s.DeleteVariable(ctx, def.ID, "base"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteVariable(ctx, def.ID, "base"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	n, _ := s.ClearVariables(ctx, def.ID)
	if n != 1 {
		t.Errorf("expected 1 cleared, got %d", n)
	}
}

func TestSetVariableValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	def, _ := s.DefaultSession(ctx)

	for _, name := range []string{"", "1x", "a-b", "with space"} {
		if _, err := s.SetVariable(ctx, def.ID, name, "1"); !errors.Is(err, ErrInvalidName) {
			t.Errorf("name %q: expected ErrInvalidName, got %v", name, err)
		}
	}
	if _, err := s.SetVariable(ctx, "missing", "x", "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown session, got %v", err)
	}
}
