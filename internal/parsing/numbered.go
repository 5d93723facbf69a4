package parsing

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaldeqca/sex-sim-ai/internal/types"
)

// numberedLine matches "1. text" or "2) text" on its own line.
var numberedLine = regexp.MustCompile(`(?m)^[ \t]*(\d{1,2})[.)][ \t]+(\S.*?)[ \t]*\r?$`)

// minNumberedOptions is how many list items make a narrative look like a
// choice list rather than prose that happens to start with a number.
const minNumberedOptions = 2

// NumberedOptions recovers a record from prose that lists its choices as a
// numbered list. The text before the first item becomes mainText. Later
// duplicates of a number are ignored.
func NumberedOptions(narrative string) (json.RawMessage, bool) {
	matches := numberedLine.FindAllStringSubmatchIndex(narrative, -1)
	if len(matches) < minNumberedOptions {
		return nil, false
	}

	record := types.NewParsedRecord(strings.TrimSpace(narrative[:matches[0][0]]))
	for _, m := range matches {
		key := "option" + narrative[m[2]:m[3]]
		if _, exists := record.Options.Get(key); exists {
			continue
		}
		record.Options.Set(key, narrative[m[4]:m[5]])
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, false
	}
	return data, true
}
