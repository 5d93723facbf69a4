// Package parsing turns raw model output into a canonical ParsedRecord: it
// locates the structured block, parses or repairs it, merges it with the
// surrounding narrative and checks content length.
package parsing

import (
	"regexp"
	"strings"

	"github.com/kaldeqca/sex-sim-ai/internal/brackets"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
)

// fencedBlock matches the first ```json fence, non-greedy.
var fencedBlock = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// Extract separates the structured block from the prose around it.
//
// A ```json fence wins over a bare object. Without a fence the first `{`
// starts the candidate; if its braces never balance the candidate runs to the
// end of the text and only the prose before it is narrative. An empty fence
// yields no candidate.
func Extract(text string) types.ExtractionOutcome {
	if m := fencedBlock.FindStringSubmatchIndex(text); m != nil {
		narrative := strings.TrimSpace(text[:m[0]] + text[m[1]:])
		candidate := text[m[2]:m[3]]
		if candidate == "" {
			return types.ExtractionOutcome{Narrative: narrative}
		}
		return types.ExtractionOutcome{
			Candidate: &candidate,
			Narrative: narrative,
		}
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return types.ExtractionOutcome{Narrative: strings.TrimSpace(text)}
	}

	end, ok := brackets.ScanObject(text, start)
	if !ok {
		candidate := text[start:]
		return types.ExtractionOutcome{
			Candidate: &candidate,
			Narrative: strings.TrimSpace(text[:start]),
		}
	}

	candidate := text[start : end+1]
	return types.ExtractionOutcome{
		Candidate: &candidate,
		Narrative: joinProse(text[:start], text[end+1:]),
	}
}

func joinProse(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
