package repair

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Lenient hands candidate to a general-purpose JSON repairer. It covers damage
// the structural steps leave alone (single quotes, unquoted keys, truncated
// literals) and is only consulted after Repair has given up. The result must
// be a JSON object.
func Lenient(candidate string) (json.RawMessage, bool) {
	text := strings.TrimSpace(candidate)
	if text == "" {
		return nil, false
	}

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, false
	}
	repaired = strings.TrimSpace(repaired)
	if !strings.HasPrefix(repaired, "{") || !json.Valid([]byte(repaired)) {
		return nil, false
	}
	return json.RawMessage(repaired), true
}
