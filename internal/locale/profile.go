// Package locale describes how content length is measured for a language and
// which minimum lengths apply per mode and field.
package locale

import (
	"strings"
	"unicode/utf8"

	"github.com/kaldeqca/sex-sim-ai/internal/types"
)

// CountingStrategy selects how a field's length is measured.
type CountingStrategy string

const (
	// CountCharacters counts Unicode scalar values of the trimmed text. Used for
	// scripts where word boundaries are unreliable (Chinese, Japanese).
	CountCharacters CountingStrategy = "characters"
	// CountWords counts runs of non-whitespace.
	CountWords CountingStrategy = "words"
)

// FieldRule requires Field to have at least Min units when the record was
// produced in Mode.
type FieldRule struct {
	Mode  types.Mode `yaml:"mode" json:"mode" validate:"required,mode"`
	Field string     `yaml:"field" json:"field" validate:"required,fieldpath"`
	Min   int        `yaml:"min" json:"min" validate:"gte=1"`
}

// Profile is supplied by the caller and treated as read-only by the engine.
type Profile struct {
	Name        string           `yaml:"name" json:"name" validate:"required"`
	Counting    CountingStrategy `yaml:"counting" json:"counting" validate:"required,oneof=characters words"`
	Placeholder string           `yaml:"placeholder" json:"placeholder" validate:"required"`
	Rules       []FieldRule      `yaml:"rules" json:"rules" validate:"dive"`
}

// Count measures s with the profile's counting strategy.
func (p *Profile) Count(s string) int {
	return Count(p.Counting, s)
}

// RulesFor returns the rules that apply to mode, in declaration order.
func (p *Profile) RulesFor(mode types.Mode) []FieldRule {
	var rules []FieldRule
	for _, r := range p.Rules {
		if r.Mode == mode {
			rules = append(rules, r)
		}
	}
	return rules
}

// Count measures s using strategy.
func Count(strategy CountingStrategy, s string) int {
	switch strategy {
	case CountWords:
		return len(strings.Fields(s))
	default:
		return utf8.RuneCountInString(strings.TrimSpace(s))
	}
}
