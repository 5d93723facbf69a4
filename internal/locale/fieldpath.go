package locale

import (
	"fmt"
	"strings"
)

// Section is a top-level part of a parsed record.
type Section string

const (
	SectionMainText  Section = "mainText"
	SectionOptions   Section = "options"
	SectionCoreState Section = "coreState"
)

// FieldPath addresses one value of a parsed record, e.g. "options.option3".
type FieldPath struct {
	Section Section
	// Key is empty for mainText.
	Key string
}

func (f FieldPath) String() string {
	if f.Key == "" {
		return string(f.Section)
	}
	return string(f.Section) + "." + f.Key
}

// ParseFieldPath accepts "mainText", "options.<key>" or "coreState.<key>".
func ParseFieldPath(s string) (FieldPath, error) {
	s = strings.TrimSpace(s)
	if s == string(SectionMainText) {
		return FieldPath{Section: SectionMainText}, nil
	}

	section, key, found := strings.Cut(s, ".")
	if !found || key == "" {
		return FieldPath{}, fmt.Errorf("invalid field path %q: expected mainText, options.<key> or coreState.<key>", s)
	}
	switch Section(section) {
	case SectionOptions, SectionCoreState:
		return FieldPath{Section: Section(section), Key: key}, nil
	}
	return FieldPath{}, fmt.Errorf("invalid field path %q: unknown section %q", s, section)
}
