// Package ocr reads text out of screen crops with Tesseract.
package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/nfnt/resize"
	"github.com/otiai10/gosseract/v2"

	"github.com/ConserveLee/questr/internal/engine/screen"
)

// DefaultScale enlarges crops before recognition; game UI text is small.
const DefaultScale = 2

// Tesseract wraps a gosseract client. The client is not safe for
// concurrent use, so calls are serialized.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
	Scale  uint
}

// NewTesseract creates a client for lang ("eng" when empty).
func NewTesseract(lang string) (*Tesseract, error) {
	if lang == "" {
		lang = "eng"
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("tesseract language %s: %w", lang, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("tesseract page mode: %w", err)
	}
	return &Tesseract{client: client, Scale: DefaultScale}, nil
}

// ExtractText returns the text found in img, trimmed.
func (t *Tesseract) ExtractText(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := screen.EncodePNG(Prepare(img, t.Scale))
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("tesseract image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the Tesseract handle.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

// Prepare scales img by factor with bicubic interpolation. Factors below 2
// return img unchanged.
func Prepare(img image.Image, factor uint) image.Image {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	return resize.Resize(uint(b.Dx())*factor, uint(b.Dy())*factor, img, resize.Bicubic)
}
