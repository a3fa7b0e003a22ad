// Package calc is the request/response boundary between a front end and
// the calculator core. It owns the engine, the in-process memory keys and
// the store, and keeps them consistent with the persisted settings.
package calc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rcliao/desk-calc/internal/engine"
	"github.com/rcliao/desk-calc/internal/memory"
	"github.com/rcliao/desk-calc/internal/model"
	"github.com/rcliao/desk-calc/internal/numfmt"
	"github.com/rcliao/desk-calc/internal/store"
)

// Service evaluates expressions against a session and records the results.
// It is not safe for concurrent use.
type Service struct {
	store  store.Store
	engine *engine.Engine
	memory *memory.Manager
	logger *slog.Logger
}

// New creates a service and restores the persisted calculation mode. A nil
// logger discards output.
func New(ctx context.Context, st store.Store, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		store:  st,
		engine: engine.New(logger),
		memory: memory.NewManager(),
		logger: logger,
	}

	mode, err := st.GetSetting(ctx, model.SettingMode)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load mode: %w", err)
	}
	if mode != "" {
		if err := s.engine.SetMode(model.Mode(mode)); err != nil {
			logger.Warn("ignoring stored mode", "mode", mode, "err", err)
		}
	}
	return s, nil
}

// CalculateRequest asks for one expression to be evaluated.
type CalculateRequest struct {
	Expression string
	// SessionID selects the variable scope. Empty means the current session.
	SessionID string
	// Mode overrides the current mode for this call only.
	Mode model.Mode
	// Record appends a successful result to history.
	Record bool
}

// CalculateResponse is the outcome of a successful calculation.
type CalculateResponse struct {
	engine.Result
	// Display is Value grouped with the numberFormat setting.
	Display   string `json:"display" yaml:"display"`
	SessionID string `json:"session_id" yaml:"session_id"`
	HistoryID string `json:"history_id,omitempty" yaml:"history_id,omitempty"`
}

// Calculate evaluates req.Expression with the session's variables in
// scope. ans is the session's most recent recorded result.
func (s *Service) Calculate(ctx context.Context, req CalculateRequest) (*CalculateResponse, error) {
	sess, err := s.Session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	vars, err := s.scope(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	eng, err := s.engineFor(req.Mode)
	if err != nil {
		return nil, err
	}

	res, err := eng.Evaluate(req.Expression, vars)
	if err != nil {
		s.logger.Debug("evaluation failed", "expr", req.Expression, "err", err)
		return nil, err
	}

	resp := &CalculateResponse{Result: res, SessionID: sess.ID, Display: s.Display(ctx, res.Value)}
	if req.Record {
		e, err := s.store.AddHistory(ctx, model.HistoryEntry{
			Expression: res.Expression,
			Result:     res.Value,
			Mode:       res.Mode,
			SessionID:  sess.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("record history: %w", err)
		}
		resp.HistoryID = e.ID
	}
	return resp, nil
}

// BatchRequest asks for multi-line input to be evaluated.
type BatchRequest struct {
	Input     string
	SessionID string
	// Mode overrides the current mode for this call only.
	Mode model.Mode
	// Record appends every successful line to history.
	Record bool
	// Persist saves name = expr assignments as session variables.
	Persist bool
}

// BatchResponse is the outcome of a batch.
type BatchResponse struct {
	engine.Batch
	SessionID string `json:"session_id" yaml:"session_id"`
}

// Batch evaluates req.Input line by line in the session's scope.
func (s *Service) Batch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	sess, err := s.Session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	vars, err := s.scope(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	eng, err := s.engineFor(req.Mode)
	if err != nil {
		return nil, err
	}
	batch := eng.EvaluateBatch(req.Input, vars)

	if req.Record {
		for _, line := range batch.Lines {
			if line.Result == nil {
				continue
			}
			if _, err := s.store.AddHistory(ctx, model.HistoryEntry{
				Expression: line.Input,
				Result:     line.Result.Value,
				Mode:       line.Result.Mode,
				SessionID:  sess.ID,
			}); err != nil {
				return nil, fmt.Errorf("record history: %w", err)
			}
		}
	}
	if req.Persist {
		for name, value := range batch.Assigned {
			if _, err := s.store.SetVariable(ctx, sess.ID, name, value); err != nil {
				return nil, fmt.Errorf("save variable %s: %w", name, err)
			}
		}
	}
	s.logger.Debug("batch evaluated", "lines", len(batch.Lines), "failed", batch.Failed)
	return &BatchResponse{Batch: batch, SessionID: sess.ID}, nil
}

// engineFor returns the service engine, or a one-off engine when mode
// differs from the current one.
func (s *Service) engineFor(mode model.Mode) (*engine.Engine, error) {
	if mode == "" || mode == s.engine.Mode() {
		return s.engine, nil
	}
	eng := engine.New(s.logger)
	if err := eng.SetMode(mode); err != nil {
		return nil, err
	}
	return eng, nil
}

// Mode returns the current calculation mode.
func (s *Service) Mode() model.Mode {
	return s.engine.Mode()
}

// SetMode switches and persists the calculation mode.
func (s *Service) SetMode(ctx context.Context, mode model.Mode) error {
	if err := s.engine.SetMode(mode); err != nil {
		return err
	}
	return s.store.SetSetting(ctx, model.SettingMode, string(mode))
}

// SetSetting validates known keys before saving. Unknown keys are stored
// as opaque values.
func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	switch key {
	case model.SettingMode:
		return s.SetMode(ctx, model.Mode(value))
	case model.SettingNumberFormat:
		if _, err := numfmt.ParseStyle(value); err != nil {
			return err
		}
	case model.SettingScatteredKeypad:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("invalid %s %q (want true or false)", key, value)
		}
	case model.SettingTheme:
		if !validThemes[value] {
			return fmt.Errorf("invalid theme %q (valid: system, light, dark)", value)
		}
	case model.SettingCurrentSession:
		_, err := s.UseSession(ctx, value)
		return err
	}
	return s.store.SetSetting(ctx, key, value)
}

var validThemes = map[string]bool{"system": true, "light": true, "dark": true}

// Display groups value with the numberFormat setting.
func (s *Service) Display(ctx context.Context, value string) string {
	name, err := s.store.GetSetting(ctx, model.SettingNumberFormat)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("read number format", "err", err)
	}
	style, err := numfmt.ParseStyle(name)
	if err != nil {
		style = numfmt.International
	}
	return numfmt.Format(value, style)
}

// CurrentSession returns the selected session, falling back to the default
// session when none is selected or the selection no longer exists.
func (s *Service) CurrentSession(ctx context.Context) (*model.Session, error) {
	id, err := s.store.GetSetting(ctx, model.SettingCurrentSession)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if id != "" {
		sess, err := s.store.GetSession(ctx, id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		s.logger.Info("selected session is gone, using default", "session", id)
	}
	return s.store.DefaultSession(ctx)
}

// UseSession selects a session by ID or name.
func (s *Service) UseSession(ctx context.Context, ref string) (*model.Session, error) {
	sess, err := s.store.ResolveSession(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetSetting(ctx, model.SettingCurrentSession, sess.ID); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetVariable evaluates expression in the session and binds the result to
// name. Reserved names are refused.
func (s *Service) SetVariable(ctx context.Context, sessionID, name, expression string) (*model.Variable, error) {
	if err := engine.ValidateName(name); err != nil {
		return nil, err
	}
	resp, err := s.Calculate(ctx, CalculateRequest{Expression: expression, SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	return s.store.SetVariable(ctx, resp.SessionID, name, resp.Value)
}

// MemoryOp is an accumulator key.
type MemoryOp string

const (
	MemoryAdd      MemoryOp = "m+"
	MemorySubtract MemoryOp = "m-"
	MemoryRecall   MemoryOp = "mr"
	MemoryClear    MemoryOp = "mc"
	MemoryStore    MemoryOp = "ms"
)

// Memory applies op to the in-process accumulator and returns its value.
// value is ignored by mr and mc.
func (s *Service) Memory(op MemoryOp, value string) (string, error) {
	switch MemoryOp(strings.ToLower(string(op))) {
	case MemoryAdd:
		return s.memory.Add(value), nil
	case MemorySubtract:
		return s.memory.Subtract(value), nil
	case MemoryRecall:
		return s.memory.Recall(), nil
	case MemoryClear:
		s.memory.Clear()
		return s.memory.Recall(), nil
	case MemoryStore:
		s.memory.Store(value)
		return s.memory.Recall(), nil
	}
	return "", fmt.Errorf("unknown memory key %q (valid: m+, m-, mr, mc, ms)", op)
}

// Scratch returns the in-process memory keys.
func (s *Service) Scratch() *memory.Manager {
	return s.memory
}

// Session resolves ref by ID or name. An empty ref is the current session.
func (s *Service) Session(ctx context.Context, ref string) (*model.Session, error) {
	if ref == "" {
		return s.CurrentSession(ctx)
	}
	return s.store.ResolveSession(ctx, ref)
}

// scope is the session's variables plus ans.
func (s *Service) scope(ctx context.Context, sessionID string) (map[string]string, error) {
	vars, err := s.store.ListVariables(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load variables: %w", err)
	}
	scope := store.VariableMap(vars)
	last, err := s.store.ListHistory(ctx, store.ListHistoryParams{SessionID: sessionID, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("load last result: %w", err)
	}
	if len(last) > 0 {
		if _, err := strconv.ParseFloat(last[0].Result, 64); err == nil {
			scope["ans"] = last[0].Result
		}
	}
	return scope, nil
}
