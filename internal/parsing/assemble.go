package parsing

import (
	"bytes"
	"encoding/json"

	"github.com/kaldeqca/sex-sim-ai/internal/types"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Assemble builds a record from a parsed block and the narrative around it.
// Fields of the wrong shape fall back to defaults: mainText to narrative then
// placeholder, options and coreState to empty mappings. value may be nil.
func Assemble(value json.RawMessage, narrative, placeholder string) *types.ParsedRecord {
	var top map[string]json.RawMessage
	if len(value) > 0 {
		// A non-object value leaves top nil.
		_ = json.Unmarshal(value, &top)
	}

	mainText := stringField(top["mainText"])
	if mainText == "" {
		mainText = narrative
	}
	if mainText == "" {
		mainText = placeholder
	}

	record := types.NewParsedRecord(mainText)
	for pair := orderedObject(top["options"]); pair != nil; pair = pair.Next() {
		if text, ok := optionText(pair.Value); ok {
			record.Options.Set(pair.Key, text)
		}
	}
	for pair := orderedObject(top["coreState"]); pair != nil; pair = pair.Next() {
		if v, ok := stateValue(pair.Value); ok {
			record.CoreState.Set(pair.Key, v)
		}
	}
	return record
}

// orderedObject returns the first entry of raw decoded as an object in source
// order, or nil when raw is not an object.
func orderedObject(raw json.RawMessage) *orderedmap.Pair[string, json.RawMessage] {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	om := orderedmap.New[string, json.RawMessage]()
	if err := om.UnmarshalJSON(raw); err != nil {
		return nil
	}
	return om.Oldest()
}

func stringField(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// optionText keeps strings, and numbers and booleans as their literal text.
func optionText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch {
	case raw[0] == '"':
		s := stringField(raw)
		return s, true
	case isNumber(raw), string(raw) == "true", string(raw) == "false":
		return string(raw), true
	}
	return "", false
}

func stateValue(raw json.RawMessage) (types.StateValue, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return types.StateValue{}, false
	}
	if raw[0] == '"' {
		return types.TextValue(stringField(raw)), true
	}
	if isNumber(raw) {
		return types.NumberValue(json.Number(raw)), true
	}
	return types.StateValue{}, false
}

func isNumber(raw json.RawMessage) bool {
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return false
	}
	var n json.Number
	return json.Unmarshal(raw, &n) == nil
}
