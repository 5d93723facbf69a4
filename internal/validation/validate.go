package validation

import (
	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
)

// ValidateContent applies the profile's rules for mode in declaration order and
// returns a *ContentTooShortError for the first field below its minimum.
// Absent or empty fields are exempt; a whitespace-only value counts as zero.
func ValidateContent(record *types.ParsedRecord, mode types.Mode, profile *locale.Profile) error {
	violations := check(record, mode, profile, true)
	if len(violations) == 0 {
		return nil
	}
	return violations[0].Err(mode)
}

// CheckContent is ValidateContent without the early exit: every failing rule
// for mode is reported, in declaration order.
func CheckContent(record *types.ParsedRecord, mode types.Mode, profile *locale.Profile) []Violation {
	return check(record, mode, profile, false)
}

func check(record *types.ParsedRecord, mode types.Mode, profile *locale.Profile, firstOnly bool) []Violation {
	if record == nil || profile == nil {
		return nil
	}

	var violations []Violation
	for _, rule := range profile.RulesFor(mode) {
		value, ok := lookup(record, rule.Field)
		if !ok || value == "" {
			continue
		}
		got := profile.Count(value)
		if got >= rule.Min {
			continue
		}
		violations = append(violations, Violation{
			Field:    rule.Field,
			Min:      rule.Min,
			Got:      got,
			Counting: profile.Counting,
		})
		if firstOnly {
			break
		}
	}
	return violations
}

// lookup resolves a field path against the record. Numeric coreState values
// are measured by their literal text.
func lookup(record *types.ParsedRecord, field string) (string, bool) {
	path, err := locale.ParseFieldPath(field)
	if err != nil {
		return "", false
	}
	switch path.Section {
	case locale.SectionMainText:
		return record.MainText, record.MainText != ""
	case locale.SectionOptions:
		return record.Option(path.Key)
	case locale.SectionCoreState:
		v, ok := record.State(path.Key)
		if !ok {
			return "", false
		}
		return v.String(), true
	}
	return "", false
}
