package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/prompts"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
	"github.com/kaldeqca/sex-sim-ai/internal/validation"
)

// maxHistoryTurns bounds how much of the story is replayed in each prompt.
const maxHistoryTurns = 8

// Turn is one completed exchange.
type Turn struct {
	Action   string `json:"action"`
	MainText string `json:"mainText"`
}

// StoryRequest describes the next turn to generate.
type StoryRequest struct {
	Mode      types.Mode     `json:"mode"`
	Character map[string]any `json:"character,omitempty"`
	History   []Turn         `json:"history,omitempty"`
	Action    string         `json:"action"`
}

// NewStoryPrompt renders the turn prompt for req. The minimum length asked for
// matches the first rule the profile applies to the mode.
func NewStoryPrompt(req StoryRequest, profile *locale.Profile) (string, error) {
	if !req.Mode.Valid() {
		return "", fmt.Errorf("unknown mode %q", req.Mode)
	}
	if profile == nil {
		return "", fmt.Errorf("locale profile is required")
	}

	character := "(none)"
	if len(req.Character) > 0 {
		data, err := json.MarshalIndent(req.Character, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode character profile: %w", err)
		}
		character = string(data)
	}

	action := strings.TrimSpace(req.Action)
	if action == "" {
		action = "(the story begins)"
	}

	minLength := 1
	if rules := profile.RulesFor(req.Mode); len(rules) > 0 {
		minLength = rules[0].Min
	}

	return prompts.Render(prompts.StoryFile, string(req.Mode)+"-turn", map[string]string{
		"System":    prompts.MustGet(prompts.StoryFile, "system"),
		"Character": character,
		"History":   formatHistory(req.History),
		"Action":    action,
		"MinLength": strconv.Itoa(minLength),
		"Unit":      string(profile.Counting),
		"Language":  languageNote(profile.Name),
	})
}

// retryNote explains why the previous reply was rejected.
func retryNote(short *validation.ContentTooShortError) string {
	note, err := prompts.Render(prompts.StoryFile, "retry-too-short", map[string]string{
		"Field":     short.Field,
		"Got":       strconv.Itoa(short.Got),
		"Unit":      string(short.Counting),
		"MinLength": strconv.Itoa(short.Min),
	})
	if err != nil {
		return ""
	}
	return note
}

func formatHistory(history []Turn) string {
	if len(history) == 0 {
		return "(nothing yet)"
	}
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	var sb strings.Builder
	for i, turn := range history {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if turn.Action != "" {
			sb.WriteString("> ")
			sb.WriteString(turn.Action)
			sb.WriteString("\n")
		}
		sb.WriteString(turn.MainText)
	}
	return sb.String()
}

func languageNote(localeName string) string {
	if note, err := prompts.Get(prompts.StoryFile, "language-"+localeName); err == nil {
		return note
	}
	return prompts.MustGet(prompts.StoryFile, "language-en")
}
