package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(StoryFile, "classic-turn")
	require.NoError(t, err)
	assert.Contains(t, prompt, "exactly three choices")
	assert.Contains(t, prompt, "```json")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(StoryFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
	assert.NotPanics(t, func() {
		MustGet(StoryFile, "system")
	})
}

func TestFormat(t *testing.T) {
	got := Format("Hello {{.Name}}, {{.Name}}! {{.Unknown}} stays.", map[string]string{"Name": "Mira"})
	assert.Equal(t, "Hello Mira, Mira! {{.Unknown}} stays.", got)
}

func TestRender_MissingValue(t *testing.T) {
	_, err := Render(StoryFile, "retry-too-short", map[string]string{"Field": "options.option3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Got")
	assert.Contains(t, err.Error(), "MinLength")
}

func TestRender_AllValues(t *testing.T) {
	got, err := Render(StoryFile, "retry-too-short", map[string]string{
		"Field": "options.option3", "Got": "1", "Unit": "words", "MinLength": "3",
	})
	require.NoError(t, err)
	assert.Contains(t, got, "options.option3 had only 1 words")
	assert.NotContains(t, got, "{{.")
}

func TestList(t *testing.T) {
	keys, err := List(StoryFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"classic-turn", "language-en", "language-zh", "realistic-turn", "retry-too-short", "system"}, keys)
}
