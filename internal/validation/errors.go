// Package validation checks assembled records against a locale profile's
// minimum content lengths.
package validation

import (
	"fmt"

	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
)

// ContentTooShortError reports the first field that fell below its minimum.
type ContentTooShortError struct {
	Mode     types.Mode
	Field    string
	Min      int
	Got      int
	Counting locale.CountingStrategy
}

func (e *ContentTooShortError) Error() string {
	return fmt.Sprintf("content too short: %s in %s mode has %d %s, need at least %d",
		e.Field, e.Mode, e.Got, e.Counting, e.Min)
}

// Violation is one failed rule, reported by CheckContent.
type Violation struct {
	Field    string                  `json:"field"`
	Min      int                     `json:"min"`
	Got      int                     `json:"got"`
	Counting locale.CountingStrategy `json:"counting"`
}

// Err converts the violation into the error ValidateContent would return.
func (v Violation) Err(mode types.Mode) *ContentTooShortError {
	return &ContentTooShortError{Mode: mode, Field: v.Field, Min: v.Min, Got: v.Got, Counting: v.Counting}
}
