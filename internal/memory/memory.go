// Package memory implements the calculator's in-process memory keys.
//
// The accumulator lives only as long as the process. Named slots persisted in
// the database are handled by the store and are independent of it.
package memory

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/rcliao/desk-calc/internal/numfmt"
)

// DefaultSlots are the scratch slots available on start.
var DefaultSlots = []string{"M1", "M2", "M3", "M4"}

// Manager holds the running total (M+, M-, MR, MC, MS) and scratch slots.
type Manager struct {
	current string
	slots   map[string]string
}

// NewManager returns a manager with a zero accumulator and zeroed slots.
func NewManager() *Manager {
	m := &Manager{current: "0", slots: make(map[string]string, len(DefaultSlots))}
	for _, s := range DefaultSlots {
		m.slots[s] = "0"
	}
	return m
}

// parse accepts grouped display values and treats anything unparseable as
// zero, like a keypad would.
func parse(v string) float64 {
	f, err := strconv.ParseFloat(numfmt.Unformat(v), 64)
	if err != nil {
		return 0
	}
	return f
}

func format(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Add adds value to the accumulator (M+).
func (m *Manager) Add(value string) string {
	m.current = format(parse(m.current) + parse(value))
	return m.current
}

// Subtract subtracts value from the accumulator (M-).
func (m *Manager) Subtract(value string) string {
	m.current = format(parse(m.current) - parse(value))
	return m.current
}

// Recall returns the accumulator (MR).
func (m *Manager) Recall() string {
	return m.current
}

// Clear resets the accumulator (MC).
func (m *Manager) Clear() {
	m.current = "0"
}

// Store replaces the accumulator (MS).
func (m *Manager) Store(value string) {
	m.current = numfmt.Unformat(value)
}

// HasMemory reports whether the accumulator holds a non-zero value.
func (m *Manager) HasMemory() bool {
	return m.current != "0"
}

// StoreSlot sets a scratch slot.
func (m *Manager) StoreSlot(slot, value string) error {
	if slot == "" {
		return fmt.Errorf("slot name is required")
	}
	m.slots[slot] = value
	return nil
}

// RecallSlot returns a slot value, "0" when unset.
func (m *Manager) RecallSlot(slot string) string {
	if v, ok := m.slots[slot]; ok {
		return v
	}
	return "0"
}

// ClearSlot zeroes a slot.
func (m *Manager) ClearSlot(slot string) {
	m.slots[slot] = "0"
}

// Slot is a scratch slot snapshot.
type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Slots returns a sorted copy of the scratch slots.
func (m *Manager) Slots() []Slot {
	out := make([]Slot, 0, len(m.slots))
	for name, v := range m.slots {
		out = append(out, Slot{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
