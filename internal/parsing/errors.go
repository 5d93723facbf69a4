package parsing

import "fmt"

// InvalidInputError reports a call that violates the engine's input contract:
// empty or oversized text, invalid UTF-8, an unknown mode or a missing profile.
type InvalidInputError struct {
	Message string
	Cause   error
}

func (e *InvalidInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Cause
}

// UnrepairableError is returned only by engines built WithStrictStructure when
// a candidate block was found but no strategy could parse it.
type UnrepairableError struct {
	Candidate string
	// Repaired is the text after the last structural repair step.
	Repaired string
}

func (e *UnrepairableError) Error() string {
	return fmt.Sprintf("unrepairable structure: candidate of %d bytes could not be parsed", len(e.Candidate))
}
