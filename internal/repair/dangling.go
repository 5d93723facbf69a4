package repair

import (
	"regexp"
	"strings"

	"github.com/kaldeqca/sex-sim-ai/internal/brackets"
)

var (
	// `, "key":` at the very end: a key announced but cut before its value.
	commaKeyColon = regexp.MustCompile(`,\s*"[^"]*"\s*:\s*$`)
	// `"key":` at the end with no preceding comma.
	bareKeyColon = regexp.MustCompile(`"[^"]*"\s*:\s*$`)
	// `, "partial` or `, "key"` at the end: a key cut before its colon.
	keyFragment = regexp.MustCompile(`[,{]\s*"[^"]*"?\s*$`)
)

// RemoveDanglingKey strips a trailing object key that has no value.
//
// Besides the `"key":` forms, a key truncated before its colon is removed
// when the innermost open container is an object; a truncated string inside
// an array is left for CloseBrackets to terminate.
func RemoveDanglingKey(text string) string {
	text = commaKeyColon.ReplaceAllString(text, "")
	if !strings.HasSuffix(text, "}") {
		text = bareKeyColon.ReplaceAllString(text, "")
	}

	loc := keyFragment.FindStringIndex(text)
	if loc == nil {
		return text
	}
	// Include the delimiter so the state reflects the container it belongs to.
	st := brackets.Balance(text[:loc[0]+1])
	if st.InString {
		return text
	}
	if top, ok := st.Top(); !ok || top != '{' {
		return text
	}
	if text[loc[0]] == '{' {
		return text[:loc[0]+1]
	}
	return text[:loc[0]]
}
