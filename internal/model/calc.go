// Package model defines the core calculator data types.
package model

import (
	"regexp"
	"time"
)

// Mode is a calculator evaluation mode.
type Mode string

const (
	ModeStandard   Mode = "standard"
	ModeScientific Mode = "scientific"
	ModeProgrammer Mode = "programmer"
)

// ValidModes are the allowed calculation modes.
var ValidModes = map[Mode]bool{
	ModeStandard:   true,
	ModeScientific: true,
	ModeProgrammer: true,
}

// HistoryEntry is one recorded calculation.
type HistoryEntry struct {
	ID         string    `json:"id" yaml:"id"`
	Expression string    `json:"expression" yaml:"expression"`
	Result     string    `json:"result" yaml:"result"`
	Mode       Mode      `json:"mode" yaml:"mode"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Pinned     bool      `json:"pinned" yaml:"pinned"`
	SessionID  string    `json:"session_id,omitempty" yaml:"session_id,omitempty"`
}

// Setting is a process-wide key/value pair.
type Setting struct {
	Key       string    `json:"key" yaml:"key"`
	Value     string    `json:"value" yaml:"value"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// MemorySlot is a named value persisted in the database.
type MemorySlot struct {
	SlotName  string    `json:"slot_name" yaml:"slot_name"`
	Value     string    `json:"value" yaml:"value"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Session groups history and variables.
type Session struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	IsDefault bool      `json:"is_default" yaml:"is_default"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Variable is a name/value binding scoped to a session.
type Variable struct {
	ID        string    `json:"id" yaml:"id"`
	SessionID string    `json:"session_id" yaml:"session_id"`
	Name      string    `json:"name" yaml:"name"`
	Value     string    `json:"value" yaml:"value"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Setting keys the calculator itself reads.
const (
	SettingTheme           = "theme"
	SettingScatteredKeypad = "scatteredKeypad"
	SettingMode            = "calculationMode"
	SettingNumberFormat    = "numberFormat"
	SettingCurrentSession  = "currentSession"
)

// DefaultSessionName is the name given to the session created on first open.
const DefaultSessionName = "Default"

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidIdentifier reports whether name can be used as a variable name.
func ValidIdentifier(name string) bool {
	return identRe.MatchString(name)
}
