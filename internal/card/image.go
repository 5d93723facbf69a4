package card

import (
	"bytes"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// pngSignature starts every PNG file.
var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// DetectFormat returns the registered decoder name for data, e.g. "png" or "webp".
func DetectFormat(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", &CardError{Message: "unrecognized image format", Cause: err}
	}
	return format, nil
}

// EnsurePNG returns data unchanged when it is already a PNG and re-encodes any
// other supported format (gif, jpeg, bmp, tiff, webp) as PNG.
func EnsurePNG(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, &CardError{Message: "image is empty"}
	}
	if bytes.HasPrefix(data, pngSignature) {
		if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
			return nil, &CardError{Message: "invalid PNG image", Cause: err}
		}
		return data, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &CardError{Message: "failed to decode image", Cause: err}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &CardError{Message: "failed to convert " + format + " image to PNG", Cause: err}
	}
	return buf.Bytes(), nil
}
