// Package card stores a caller profile inside a PNG file: the image bytes are
// followed by a fixed marker and the profile as UTF-8 JSON. Image viewers
// ignore the trailing data.
package card

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Marker separates the image from the embedded profile.
var Marker = []byte("_SEXSIMCARD_")

// ErrMarkerNotFound is returned by Extract for files without an embedded profile.
var ErrMarkerNotFound = errors.New("not a valid card: data marker not found")

// CardError reports a card that cannot be built or read.
type CardError struct {
	Message string
	Cause   error
}

func (e *CardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("card error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("card error: %s", e.Message)
}

func (e *CardError) Unwrap() error {
	return e.Cause
}

// Card is a decoded card file.
type Card struct {
	// Image holds PNG bytes.
	Image   []byte
	Profile map[string]any
}

// ImageBase64 returns the image in standard base64 encoding.
func (c *Card) ImageBase64() string {
	return base64.StdEncoding.EncodeToString(c.Image)
}

// Embed converts image to PNG when needed and appends the marker and the
// JSON encoding of profile.
func Embed(image []byte, profile any) ([]byte, error) {
	png, err := EnsurePNG(image)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return nil, &CardError{Message: "failed to encode profile", Cause: err}
	}
	if len(data) == 0 || data[0] != '{' {
		return nil, &CardError{Message: "profile must encode as a JSON object"}
	}

	out := make([]byte, 0, len(png)+len(Marker)+len(data))
	out = append(out, png...)
	out = append(out, Marker...)
	out = append(out, data...)
	return out, nil
}

// Extract splits file at the last marker and decodes the profile after it.
func Extract(file []byte) (*Card, error) {
	idx := bytes.LastIndex(file, Marker)
	if idx < 0 {
		return nil, ErrMarkerNotFound
	}

	var profile map[string]any
	if err := json.Unmarshal(file[idx+len(Marker):], &profile); err != nil {
		return nil, &CardError{Message: "embedded profile is corrupted", Cause: err}
	}
	if profile == nil {
		return nil, &CardError{Message: "embedded profile is not a JSON object"}
	}

	return &Card{Image: bytes.Clone(file[:idx]), Profile: profile}, nil
}
