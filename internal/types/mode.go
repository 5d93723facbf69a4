package types

import (
	"fmt"
	"strings"
)

// Mode is the game mode a response was generated for. Content rules are keyed by mode.
type Mode string

const (
	// ModeClassic is the choose-your-path mode; option3 carries the free-form choice.
	ModeClassic Mode = "classic"
	// ModeRealistic is the simulation mode; coreState carries gauges and reasoning.
	ModeRealistic Mode = "realistic"
)

// Modes returns every known mode in a stable order.
func Modes() []Mode {
	return []Mode{ModeClassic, ModeRealistic}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeClassic, ModeRealistic:
		return true
	}
	return false
}

// ParseMode converts a user supplied string to a Mode (case-insensitive).
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q (expected one of: classic, realistic)", s)
	}
	return m, nil
}
