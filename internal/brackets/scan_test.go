package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		start   int
		wantEnd int
		wantOK  bool
	}{
		{name: "flat object", input: `{"a": 1}`, start: 0, wantEnd: 7, wantOK: true},
		{name: "nested object", input: `x {"a": {"b": {}}} y`, start: 2, wantEnd: 17, wantOK: true},
		{name: "brace inside string", input: `{"a": "}{"}`, start: 0, wantEnd: 10, wantOK: true},
		{name: "escaped quote inside string", input: `{"a": "say \"}\" ok"}`, start: 0, wantEnd: 20, wantOK: true},
		{name: "escaped backslash before quote", input: `{"a": "c:\\"}`, start: 0, wantEnd: 12, wantOK: true},
		{name: "stops at first close", input: `{"a": 1} {"b": 2}`, start: 0, wantEnd: 7, wantOK: true},
		{name: "brackets are not counted", input: `{"a": [1, {"b": 2}]}`, start: 0, wantEnd: 19, wantOK: true},
		{name: "unterminated", input: `{"a": {"b": 1}`, start: 0, wantEnd: -1, wantOK: false},
		{name: "unterminated string", input: `{"a": "}`, start: 0, wantEnd: -1, wantOK: false},
		{name: "start not a brace", input: `abc`, start: 0, wantEnd: -1, wantOK: false},
		{name: "start out of range", input: `{}`, start: 5, wantEnd: -1, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end, ok := ScanObject(tt.input, tt.start)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestBalance(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantStack    string
		wantInString bool
		wantEscape   bool
		wantBalanced bool
	}{
		{name: "balanced", input: `{"a": [1, 2]}`, wantStack: "", wantBalanced: true},
		{name: "open object and array", input: `{"a": [1, {"b": 2`, wantStack: "{[{"},
		{name: "ends in string", input: `{"a": "hel`, wantStack: "{", wantInString: true},
		{name: "ends with escape", input: `{"a": "hel\`, wantStack: "{", wantInString: true, wantEscape: true},
		{name: "mismatched closer ignored", input: `{"a": ]`, wantStack: "{"},
		{name: "brackets inside strings ignored", input: `{"a": "[{"`, wantStack: "{"},
		{name: "escaped quote keeps string open", input: `{"a": "x\"`, wantStack: "{", wantInString: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Balance(tt.input)
			assert.Equal(t, tt.wantStack, string(st.Stack))
			assert.Equal(t, tt.wantInString, st.InString)
			assert.Equal(t, tt.wantEscape, st.PendingEscape)
			assert.Equal(t, tt.wantBalanced, st.Balanced())
		})
	}
}

func TestState_Top(t *testing.T) {
	top, ok := Balance(`{"a": [`).Top()
	assert.True(t, ok)
	assert.Equal(t, byte('['), top)

	_, ok = Balance(`{}`).Top()
	assert.False(t, ok)
}

func TestCloser(t *testing.T) {
	assert.Equal(t, byte('}'), Closer('{'))
	assert.Equal(t, byte(']'), Closer('['))
	assert.Equal(t, byte(0), Closer('x'))
}
