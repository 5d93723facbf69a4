// Package repair closes the structural damage that token-limited truncation
// leaves in model JSON: dangling keys, unterminated strings and unclosed
// brackets. It never fails; a block that cannot be saved becomes `{}`.
package repair

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/kaldeqca/sex-sim-ai/internal/brackets"
)

// Step names the repair stage that produced a parsable value.
type Step string

const (
	// StepNone means the trimmed input already parsed.
	StepNone Step = "none"
	// StepDanglingKey means stripping a truncated trailing key was enough.
	StepDanglingKey Step = "dangling_key"
	// StepBalance means closing strings and brackets was needed.
	StepBalance Step = "balance"
	// StepFailed means every step ran and the text still did not parse.
	StepFailed Step = "failed"
)

// emptyObject is returned when nothing could be salvaged.
var emptyObject = json.RawMessage(`{}`)

// Result describes one repair attempt.
type Result struct {
	// Value is always valid JSON; `{}` when OK is false.
	Value json.RawMessage
	// Repaired is the text after every applied step, kept for diagnostics.
	Repaired string
	Step     Step
	OK       bool
}

// Repair applies dangling key removal then bracket balancing to candidate,
// retrying a strict parse after each step.
func Repair(candidate string) Result {
	text := strings.TrimSpace(candidate)
	if parses(text) {
		return Result{Value: json.RawMessage(text), Repaired: text, Step: StepNone, OK: true}
	}

	text = RemoveDanglingKey(text)
	if parses(text) {
		return Result{Value: json.RawMessage(text), Repaired: text, Step: StepDanglingKey, OK: true}
	}

	text = CloseBrackets(text)
	if parses(text) {
		return Result{Value: json.RawMessage(text), Repaired: text, Step: StepBalance, OK: true}
	}

	return Result{Value: emptyObject, Repaired: text, Step: StepFailed, OK: false}
}

// CloseBrackets terminates an open string and appends closers for every
// bracket left open, innermost first. Before each closer the text loses
// trailing whitespace and one trailing comma.
func CloseBrackets(text string) string {
	st := brackets.Balance(text)
	if st.InString {
		if st.PendingEscape {
			text = text[:len(text)-1]
		}
		text += `"`
	}

	var sb strings.Builder
	sb.WriteString(text)
	for i := len(st.Stack) - 1; i >= 0; i-- {
		cur := strings.TrimRightFunc(sb.String(), unicode.IsSpace)
		cur = strings.TrimSuffix(cur, ",")
		sb.Reset()
		sb.WriteString(cur)
		sb.WriteByte(brackets.Closer(st.Stack[i]))
	}
	return sb.String()
}

func parses(text string) bool {
	return text != "" && json.Valid([]byte(text))
}
