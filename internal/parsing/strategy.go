package parsing

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/kaldeqca/sex-sim-ai/internal/repair"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
)

// Status describes what happened to the structured block.
type Status string

const (
	StatusParsed       Status = "parsed"
	StatusRepaired     Status = "repaired"
	StatusNoStructure  Status = "no_structure"
	StatusUnrepairable Status = "unrepairable"
)

// Strategy names, as reported in Result.Strategy.
const (
	StrategyStrict          = "strict"
	StrategyStructural      = "structural"
	StrategyLenient         = "lenient"
	StrategyNumberedOptions = "numbered_options"
	StrategyNone            = "none"
)

// Strategy turns an extraction outcome into a JSON object. The engine tries
// strategies in order and stops at the first that reports ok.
type Strategy struct {
	Name string
	// Status is reported on success. Empty means the status is derived from
	// the extraction (no_structure or unrepairable).
	Status Status
	Apply  func(outcome types.ExtractionOutcome) (json.RawMessage, bool)
}

// StrictStrategy accepts the trimmed candidate when it is already a JSON object.
func StrictStrategy() Strategy {
	return Strategy{
		Name:   StrategyStrict,
		Status: StatusParsed,
		Apply: func(outcome types.ExtractionOutcome) (json.RawMessage, bool) {
			if !outcome.HasCandidate() {
				return nil, false
			}
			text := strings.TrimSpace(*outcome.Candidate)
			if !json.Valid([]byte(text)) || !isObject([]byte(text)) {
				return nil, false
			}
			return json.RawMessage(text), true
		},
	}
}

// StructuralStrategy runs the truncation repairer over the candidate.
func StructuralStrategy() Strategy {
	return Strategy{
		Name:   StrategyStructural,
		Status: StatusRepaired,
		Apply: func(outcome types.ExtractionOutcome) (json.RawMessage, bool) {
			if !outcome.HasCandidate() {
				return nil, false
			}
			res := repair.Repair(*outcome.Candidate)
			if !res.OK || !isObject(res.Value) {
				return nil, false
			}
			return res.Value, true
		},
	}
}

// LenientStrategy hands the candidate to a general-purpose JSON repairer.
func LenientStrategy() Strategy {
	return Strategy{
		Name:   StrategyLenient,
		Status: StatusRepaired,
		Apply: func(outcome types.ExtractionOutcome) (json.RawMessage, bool) {
			if !outcome.HasCandidate() {
				return nil, false
			}
			return repair.Lenient(*outcome.Candidate)
		},
	}
}

// NumberedOptionsStrategy recovers a numbered choice list from the narrative.
func NumberedOptionsStrategy() Strategy {
	return Strategy{
		Name: StrategyNumberedOptions,
		Apply: func(outcome types.ExtractionOutcome) (json.RawMessage, bool) {
			return NumberedOptions(outcome.Narrative)
		},
	}
}

func isObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
