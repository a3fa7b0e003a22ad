package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/desk-calc/internal/model"
)

func seedSession(t *testing.T, s *SQLiteStore) *model.Session {
	t.Helper()
	ctx := context.Background()
	sess, err := s.CreateSession(ctx, "mortgage")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s.SetVariable(ctx, sess.ID, "principal", "250000")
	s.SetVariable(ctx, sess.ID, "rate", "0.045")
	s.AddHistory(ctx, model.HistoryEntry{Expression: "principal*rate", Result: "11250", Mode: model.ModeStandard, SessionID: sess.ID})
	s.AddHistory(ctx, model.HistoryEntry{Expression: "0xFF", Result: "255", Mode: model.ModeProgrammer, SessionID: sess.ID, Pinned: true})
	// belongs to another session, must not be exported
	s.AddHistory(ctx, model.HistoryEntry{Expression: "1+1", Result: "2", Mode: model.ModeStandard})
	return sess
}

func TestExportSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sess := seedSession(t, s)

	doc, err := s.ExportSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Version != ExportFormatVersion {
		t.Errorf("expected version %d, got %d", ExportFormatVersion, doc.Version)
	}
	if doc.Session.Name != "mortgage" {
		t.Errorf("unexpected session: %+v", doc.Session)
	}
	if len(doc.Variables) != 2 {
		t.Errorf("expected 2 variables, got %d", len(doc.Variables))
	}
	if len(doc.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(doc.History))
	}
	if doc.History[0].Expression != "principal*rate" {
		t.Errorf("expected oldest first, got %s", doc.History[0].Expression)
	}
}

func TestImportSessionJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	doc, err := src.ExportSession(ctx, seedSession(t, src).ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded SessionExport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	dst := newTestStore(t)
	sess, err := dst.ImportSession(ctx, &decoded, "")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if sess.Name != "mortgage" || sess.IsDefault {
		t.Errorf("unexpected imported session: %+v", sess)
	}

	vars, _ := dst.ListVariables(ctx, sess.ID)
	if VariableMap(vars)["principal"] != "250000" {
		t.Errorf("variables not imported: %+v", vars)
	}
	hist, _ := dst.ListHistory(ctx, ListHistoryParams{SessionID: sess.ID})
	if len(hist) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(hist))
	}
	if hist[0].Mode != model.ModeProgrammer || !hist[0].Pinned {
		t.Errorf("pinned programmer entry not preserved: %+v", hist[0])
	}
	if hist[0].ID == doc.History[1].ID {
		t.Error("expected fresh IDs on import")
	}
}

func TestImportSessionYAML(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	doc, _ := s.ExportSession(ctx, seedSession(t, s).ID)

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded SessionExport
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// same name in the same database collides
	if _, err := s.ImportSession(ctx, &decoded, ""); !errors.Is(err, ErrSessionExists) {
		t.Errorf("expected ErrSessionExists, got %v", err)
	}

	sess, err := s.ImportSession(ctx, &decoded, "mortgage copy")
	if err != nil {
		t.Fatalf("import renamed: %v", err)
	}
	vars, _ := s.ListVariables(ctx, sess.ID)
	if len(vars) != 2 {
		t.Errorf("expected 2 variables, got %d", len(vars))
	}
}

func TestImportSessionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	doc := &SessionExport{
		Version: ExportFormatVersion,
		Session: model.Session{Name: "broken"},
		History: []model.HistoryEntry{{Expression: "1", Result: "1", Mode: "graphing"}},
	}
	if _, err := s.ImportSession(ctx, doc, ""); err == nil {
		t.Fatal("expected error for invalid mode")
	}
	if _, err := s.ResolveSession(ctx, "broken"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected no session left behind, got %v", err)
	}

	doc = &SessionExport{Version: ExportFormatVersion + 1, Session: model.Session{Name: "future"}}
	if _, err := s.ImportSession(ctx, doc, ""); err == nil {
		t.Error("expected error for newer export version")
	}
}
