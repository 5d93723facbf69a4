// Package observability provides logging setup and formatted output for
// verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kaldeqca/sex-sim-ai/internal/card"
	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/parsing"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
	"github.com/kaldeqca/sex-sim-ai/internal/validation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// PrintResult outputs the parsed record with how it was obtained.
func (p *Printer) PrintResult(res *parsing.Result) {
	if res == nil || res.Record == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:    %s (%s)\n", res.Status, res.Strategy))
	sb.WriteString(fmt.Sprintf("Main text: %s\n", truncate(singleLine(res.Record.MainText), 44)))
	if res.Narrative != "" && res.Narrative != res.Record.MainText {
		sb.WriteString(fmt.Sprintf("Narrative: %s\n", truncate(singleLine(res.Narrative), 44)))
	}
	writeRecordMaps(&sb, res.Record)

	p.printBox("PARSED RECORD", strings.TrimSuffix(sb.String(), "\n"))
}

func writeRecordMaps(sb *strings.Builder, r *types.ParsedRecord) {
	if keys := r.OptionKeys(); len(keys) > 0 {
		sb.WriteString("\nOptions:\n")
		count := min(len(keys), maxItemsToShow)
		for i := 0; i < count; i++ {
			text, _ := r.Option(keys[i])
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", keys[i], singleLine(text)))
		}
		if len(keys) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(keys)-maxItemsToShow))
		}
	}

	if keys := r.StateKeys(); len(keys) > 0 {
		sb.WriteString("\nCore state:\n")
		for _, k := range keys {
			v, _ := r.State(k)
			sb.WriteString(fmt.Sprintf("  • %s = %s\n", k, singleLine(v.String())))
		}
	}
}

// PrintProfile outputs a locale profile and its rules.
func (p *Printer) PrintProfile(profile *locale.Profile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:        %s\n", profile.Name))
	sb.WriteString(fmt.Sprintf("Counting:    %s\n", profile.Counting))
	sb.WriteString(fmt.Sprintf("Placeholder: %s\n", profile.Placeholder))

	if len(profile.Rules) > 0 {
		sb.WriteString("\nRules:\n")
		for _, r := range profile.Rules {
			sb.WriteString(fmt.Sprintf("  • [%s] %s ≥ %d %s\n", r.Mode, r.Field, r.Min, profile.Counting))
		}
	}

	p.printBox("LOCALE PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintViolations outputs content rules that failed.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintViolations(mode types.Mode, violations []validation.Violation) {
	if len(violations) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ CONTENT LENGTH OK")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations in %s mode:\n\n", len(violations), mode))
	for i, v := range violations {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", v.Field))
		sb.WriteString(fmt.Sprintf("  %d %s, need at least %d\n", v.Got, v.Counting, v.Min))
		if i < len(violations)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("CONTENT VIOLATIONS", sb.String())
}

// PrintCard outputs a summary of an extracted card.
func (p *Printer) PrintCard(c *card.Card) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Image:   %d bytes PNG\n", len(c.Image)))
	sb.WriteString(fmt.Sprintf("Profile: %d fields\n", len(c.Profile)))

	keys := make([]string, 0, len(c.Profile))
	for k := range c.Profile {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) > 0 {
		sb.WriteString("\n")
	}
	count := min(len(keys), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s: %v\n", keys[i], c.Profile[keys[i]]))
	}
	if len(keys) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(keys)-maxItemsToShow))
	}

	p.printBox("PROFILE CARD", strings.TrimSuffix(sb.String(), "\n"))
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
