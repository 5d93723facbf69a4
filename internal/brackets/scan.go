// Package brackets locates balanced brace regions in model output while
// respecting quoted strings and escape sequences.
package brackets

// quoteTracker follows double-quoted string boundaries one byte at a time.
// A quote toggles the string state only when it is not escaped by an
// unescaped backslash, so `\\"` closes a string and `\"` does not.
type quoteTracker struct {
	inString bool
	escaped  bool
}

// step consumes c and reports whether c is structural (outside any string).
func (q *quoteTracker) step(c byte) bool {
	if q.inString {
		switch {
		case q.escaped:
			q.escaped = false
		case c == '\\':
			q.escaped = true
		case c == '"':
			q.inString = false
		}
		return false
	}
	if c == '"' {
		q.inString = true
		return false
	}
	return true
}

// ScanObject scans forward from the opening brace at s[start] and returns the
// inclusive index of the brace that closes it. ok is false when the input ends
// before the depth returns to zero, or when s[start] is not '{'.
//
// Only braces are counted; square brackets are ignored.
func ScanObject(s string, start int) (end int, ok bool) {
	if start < 0 || start >= len(s) || s[start] != '{' {
		return -1, false
	}

	depth := 1
	var q quoteTracker
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		if !q.step(c) {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return -1, false
}

// State is the result of a balance scan: the brackets still open (outermost
// first) and whether the text ends inside a string.
type State struct {
	Stack []byte
	// InString is true when the text ends inside an unterminated string.
	InString bool
	// PendingEscape is true when the text ends with an escaping backslash
	// inside a string.
	PendingEscape bool
}

// Balanced reports whether nothing is left open.
func (st State) Balanced() bool {
	return len(st.Stack) == 0 && !st.InString
}

// Top returns the innermost open bracket.
func (st State) Top() (byte, bool) {
	if len(st.Stack) == 0 {
		return 0, false
	}
	return st.Stack[len(st.Stack)-1], true
}

// Balance scans all of s, pushing every '{' or '[' found outside strings and
// popping it on the matching closer. A closer that does not match the top of
// the stack is ignored.
func Balance(s string) State {
	stack := make([]byte, 0, 8)
	var q quoteTracker
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !q.step(c) {
			continue
		}
		switch c {
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if n := len(stack); n > 0 && stack[n-1] == '{' {
				stack = stack[:n-1]
			}
		case ']':
			if n := len(stack); n > 0 && stack[n-1] == '[' {
				stack = stack[:n-1]
			}
		}
	}
	return State{Stack: stack, InString: q.inString, PendingEscape: q.inString && q.escaped}
}

// Closer returns the closing bracket for an opener, or 0 if c is not one.
func Closer(c byte) byte {
	switch c {
	case '{':
		return '}'
	case '[':
		return ']'
	}
	return 0
}
