package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileList(t *testing.T) {
	stdout, _, err := execute(t, "", "profile", "list")
	require.NoError(t, err)
	assert.Equal(t, "en\nzh\n", stdout)
}

func TestProfileShow(t *testing.T) {
	stdout, _, err := execute(t, "", "profile", "show", "zh")
	require.NoError(t, err)
	assert.Contains(t, stdout, "LOCALE PROFILE")
	assert.Contains(t, stdout, "characters")

	stdout, _, err = execute(t, "", "profile", "show", "--json")
	require.NoError(t, err)
	var profile map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &profile))
	assert.Equal(t, "en", profile["name"])
	assert.Equal(t, "words", profile["counting"])
}

func TestProfileShow_FileAndNameConflict(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", customProfileYAML)

	stdout, _, err := execute(t, "", "profile", "show", "--profile", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "custom")

	_, _, err = execute(t, "", "profile", "show", "en", "--profile", path)
	assert.Error(t, err)

	_, _, err = execute(t, "", "profile", "show", "fr")
	assert.Error(t, err)
}

func TestProfileValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", customProfileYAML)
	bad := writeFile(t, dir, "bad.yaml", "name: bad\ncounting: syllables\n")

	stdout, _, err := execute(t, "", "profile", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ "+good)

	stdout, stderr, err := execute(t, "", "profile", "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 profiles are invalid")
	assert.Contains(t, stdout, "✓ "+good)
	assert.Contains(t, stderr, "✗ "+bad)
}

const customProfileYAML = `name: custom
counting: words
placeholder: "[nothing here]"
rules:
  - mode: classic
    field: mainText
    min: 2
`
