package card

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 80), B: 200, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return buf.Bytes()
}

func TestEmbedExtract_RoundTrip(t *testing.T) {
	img := encodePNG(t)
	profile := map[string]any{"name": "Mira", "age": float64(27), "traits": []any{"shy", "curious"}}

	file, err := Embed(img, profile)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file, img), "image bytes must come first")
	assert.Equal(t, len(img), bytes.Index(file, Marker))

	c, err := Extract(file)
	require.NoError(t, err)
	assert.Equal(t, img, c.Image)
	assert.Equal(t, profile, c.Profile)
	assert.Equal(t, base64.StdEncoding.EncodeToString(img), c.ImageBase64())
}

func TestExtract_UsesLastMarker(t *testing.T) {
	// Image data that happens to contain the marker.
	img := append(encodePNG(t), Marker...)
	file := append(append(append([]byte{}, img...), Marker...), []byte(`{"name":"last"}`)...)

	c, err := Extract(file)
	require.NoError(t, err)
	assert.Equal(t, "last", c.Profile["name"])
	assert.Equal(t, img, c.Image)
}

func TestExtract_Errors(t *testing.T) {
	_, err := Extract(encodePNG(t))
	assert.True(t, errors.Is(err, ErrMarkerNotFound))

	tests := []struct {
		name    string
		payload string
	}{
		{name: "corrupted json", payload: `{"name": `},
		{name: "array", payload: `["a"]`},
		{name: "null", payload: `null`},
		{name: "empty", payload: ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := append(append(encodePNG(t), Marker...), []byte(tt.payload)...)
			_, err := Extract(file)
			var cerr *CardError
			require.True(t, errors.As(err, &cerr))
		})
	}
}

func TestEmbed_ConvertsToPNG(t *testing.T) {
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, testImage(), nil))
	var bm bytes.Buffer
	require.NoError(t, bmp.Encode(&bm, testImage()))

	for name, data := range map[string][]byte{"jpeg": jpg.Bytes(), "bmp": bm.Bytes()} {
		t.Run(name, func(t *testing.T) {
			format, err := DetectFormat(data)
			require.NoError(t, err)
			assert.Equal(t, name, format)

			file, err := Embed(data, map[string]string{"name": "x"})
			require.NoError(t, err)

			c, err := Extract(file)
			require.NoError(t, err)
			cfg, err := png.DecodeConfig(bytes.NewReader(c.Image))
			require.NoError(t, err)
			assert.Equal(t, 4, cfg.Width)
			assert.Equal(t, 3, cfg.Height)
		})
	}
}

func TestEmbed_Errors(t *testing.T) {
	_, err := Embed(nil, map[string]string{})
	assert.ErrorContains(t, err, "image is empty")

	_, err = Embed([]byte("plain text, not an image"), map[string]string{})
	assert.ErrorContains(t, err, "failed to decode image")

	_, err = Embed(encodePNG(t), []string{"not", "an", "object"})
	assert.ErrorContains(t, err, "JSON object")

	_, err = Embed(encodePNG(t), nil)
	assert.ErrorContains(t, err, "JSON object")
}
