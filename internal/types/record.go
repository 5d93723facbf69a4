package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Options maps option keys to their display text, in source order.
type Options = orderedmap.OrderedMap[string, string]

// CoreState maps state keys to numeric or textual values, in source order.
type CoreState = orderedmap.OrderedMap[string, StateValue]

// StateValue is a coreState entry: either a number or a string.
type StateValue struct {
	number json.Number
	text   string
	isNum  bool
}

// NumberValue returns a numeric StateValue. n must be a valid JSON number.
func NumberValue(n json.Number) StateValue {
	return StateValue{number: n, isNum: true}
}

// TextValue returns a string StateValue.
func TextValue(s string) StateValue {
	return StateValue{text: s}
}

// IsNumber reports whether the value is numeric.
func (v StateValue) IsNumber() bool {
	return v.isNum
}

// Float returns the numeric value. ok is false for text values or unparsable numbers.
func (v StateValue) Float() (float64, bool) {
	if !v.isNum {
		return 0, false
	}
	f, err := v.number.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// String returns the text value, or the literal form of a number.
func (v StateValue) String() string {
	if v.isNum {
		return v.number.String()
	}
	return v.text
}

// MarshalJSON keeps the original JSON kind.
func (v StateValue) MarshalJSON() ([]byte, error) {
	if v.isNum {
		return []byte(v.number.String()), nil
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts a JSON number or string.
func (v *StateValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty coreState value")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = NumberValue(n)
		return nil
	}
	return fmt.Errorf("coreState value must be a number or string, got %s", data)
}

// ParsedRecord is the canonical engine output. MainText is never empty once the
// record has been assembled; Options and CoreState are never nil.
type ParsedRecord struct {
	MainText  string
	Options   *Options
	CoreState *CoreState
}

// NewParsedRecord returns a record with empty, non-nil mappings.
func NewParsedRecord(mainText string) *ParsedRecord {
	return &ParsedRecord{
		MainText:  mainText,
		Options:   orderedmap.New[string, string](),
		CoreState: orderedmap.New[string, StateValue](),
	}
}

// Option returns the option text for key.
func (r *ParsedRecord) Option(key string) (string, bool) {
	if r.Options == nil {
		return "", false
	}
	return r.Options.Get(key)
}

// State returns the coreState value for key.
func (r *ParsedRecord) State(key string) (StateValue, bool) {
	if r.CoreState == nil {
		return StateValue{}, false
	}
	return r.CoreState.Get(key)
}

// OptionKeys returns option keys in source order.
func (r *ParsedRecord) OptionKeys() []string {
	if r.Options == nil {
		return nil
	}
	keys := make([]string, 0, r.Options.Len())
	for pair := r.Options.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// StateKeys returns coreState keys in source order.
func (r *ParsedRecord) StateKeys() []string {
	if r.CoreState == nil {
		return nil
	}
	keys := make([]string, 0, r.CoreState.Len())
	for pair := r.CoreState.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

type recordJSON struct {
	MainText  string          `json:"mainText"`
	Options   json.RawMessage `json:"options"`
	CoreState json.RawMessage `json:"coreState"`
}

// MarshalJSON always emits the three top-level keys.
func (r ParsedRecord) MarshalJSON() ([]byte, error) {
	out := recordJSON{MainText: r.MainText, Options: json.RawMessage("{}"), CoreState: json.RawMessage("{}")}
	if r.Options != nil && r.Options.Len() > 0 {
		b, err := r.Options.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal options: %w", err)
		}
		out.Options = b
	}
	if r.CoreState != nil && r.CoreState.Len() > 0 {
		b, err := r.CoreState.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal coreState: %w", err)
		}
		out.CoreState = b
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a record previously produced by MarshalJSON.
func (r *ParsedRecord) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	rec := NewParsedRecord(in.MainText)
	if len(in.Options) > 0 && string(in.Options) != "null" {
		if err := rec.Options.UnmarshalJSON(in.Options); err != nil {
			return fmt.Errorf("failed to unmarshal options: %w", err)
		}
	}
	if len(in.CoreState) > 0 && string(in.CoreState) != "null" {
		if err := rec.CoreState.UnmarshalJSON(in.CoreState); err != nil {
			return fmt.Errorf("failed to unmarshal coreState: %w", err)
		}
	}
	*r = *rec
	return nil
}
