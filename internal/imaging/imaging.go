// Package imaging turns uploaded photos into bounded data URLs. The ledger
// stores the returned string verbatim inside the Document, so output size
// directly drives storage pressure.
package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

const (
	DefaultMaxSize = 1024
	DefaultQuality = 72
)

type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int // JPEG quality, 1-100
}

// OptimizeToDataURL decodes a JPEG or PNG, downscales it to fit the
// configured box (never upscales) and re-encodes it as a JPEG data URL.
func OptimizeToDataURL(r io.Reader, opts Options) (string, error) {
	maxW := opts.MaxWidth
	if maxW <= 0 {
		maxW = DefaultMaxSize
	}
	maxH := opts.MaxHeight
	if maxH <= 0 {
		maxH = DefaultMaxSize
	}
	quality := opts.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return "", err
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	ratio := 1.0
	if rw := float64(maxW) / float64(w); rw < ratio {
		ratio = rw
	}
	if rh := float64(maxH) / float64(h); rh < ratio {
		ratio = rh
	}
	tw, th := max(1, int(float64(w)*ratio+0.5)), max(1, int(float64(h)*ratio+0.5))

	out := src
	if tw != w || th != h {
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ReadToDataURL wraps raw file bytes in a data URL without reprocessing.
func ReadToDataURL(r io.Reader, mimeType string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}
