package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCard_EmbedExtract(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "portrait.png")
	require.NoError(t, os.WriteFile(imagePath, pngBytes(t), 0644))
	profilePath := writeFile(t, dir, "mia.json", `{"name": "Mia", "age": 24, "traits": ["shy", "curious"]}`)
	cardPath := filepath.Join(dir, "mia.png")

	stdout, _, err := execute(t, "", "card", "embed", "-i", imagePath, "-p", profilePath, "-o", cardPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Card written to "+cardPath)

	imageOut := filepath.Join(dir, "bare.png")
	stdout, stderr, err := execute(t, "", "card", "extract", cardPath, "--image-out", imageOut, "-v")
	require.NoError(t, err)

	var profile map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &profile))
	assert.Equal(t, "Mia", profile["name"])
	assert.Equal(t, float64(24), profile["age"])
	assert.Contains(t, stderr, "name: Mia")

	bare, err := os.ReadFile(imageOut)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(bare))
	assert.NoError(t, err)
}

func TestCard_Errors(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "portrait.png")
	require.NoError(t, os.WriteFile(imagePath, pngBytes(t), 0644))
	listProfile := writeFile(t, dir, "list.json", `["not", "an", "object"]`)
	out := filepath.Join(dir, "card.png")

	_, _, err := execute(t, "", "card", "embed", "-i", imagePath, "-p", listProfile, "-o", out)
	assert.Error(t, err)

	_, _, err = execute(t, "", "card", "embed", "-i", imagePath, "-o", out)
	assert.Error(t, err, "profile flag is required")

	_, _, err = execute(t, "", "card", "extract", imagePath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marker not found")
}
