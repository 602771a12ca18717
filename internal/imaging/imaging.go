// Package imaging validates uploaded photos and normalizes them to a bounded
// JPEG before they are stored or sent to the classifier.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

const (
	// MaxDimension bounds the width and height of a normalized photo.
	MaxDimension = 1024
	// Quality is the JPEG quality used when re-encoding.
	Quality = 85
	// ContentType is the MIME type of every normalized photo.
	ContentType = "image/jpeg"
	// MaxPixels bounds the declared width times height of an upload.
	MaxPixels = 40_000_000
)

var (
	// ErrUnsupported indicates the upload is not a JPEG or PNG image.
	ErrUnsupported = errors.New("unsupported image format (JPEG or PNG required)")
	// ErrCorrupt indicates the upload sniffed as an image but failed to decode.
	ErrCorrupt = errors.New("image could not be decoded")
	// ErrTooLarge indicates the upload declares more pixels than MaxPixels.
	ErrTooLarge = errors.New("image dimensions too large")
)

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is a normalized image ready for storage.
type Photo struct {
	Data   []byte
	Width  int
	Height int
}

// Process sniffs data, rejects anything that is not JPEG or PNG, downscales
// to MaxDimension and re-encodes as JPEG. The header is checked against
// MaxPixels before any pixel data is decoded.
func Process(data []byte) (*Photo, error) {
	if detected := http.DetectContentType(data); !accepted[detected] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, detected)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrCorrupt, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	img = fit(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	b := img.Bounds()
	return &Photo{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// DataURI encodes data as a data: URI for inline transport to a vision model.
func DataURI(data []byte, mime string) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func fit(img image.Image, limit int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= limit && h <= limit {
		return img
	}

	nw, nh := limit, limit
	if w > h {
		nh = max(1, h*limit/w)
	} else {
		nw = max(1, w*limit/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// ReadForm reads and processes the multipart file in field. It returns nil
// without error when the field is absent. The request's multipart form must
// already be parsed with a size limit.
func ReadForm(r *http.Request, field string) (*Photo, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return Process(data)
}

// MapHTTPStatus maps imaging errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnsupported), errors.Is(err, ErrCorrupt):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}
