package screen

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png" // Register PNG decoder for image.Decode
	"os"
)

// LoadImage loads an image from the filesystem
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// DecodePNG decodes a PNG screenshot as sent by the device.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG, e.g. to hand a crop to the OCR engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveImage writes img to path as PNG.
func SaveImage(path string, img image.Image) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Crop returns the part of img inside box. The result keeps the screen
// coordinates of box as its bounds.
func Crop(img image.Image, box image.Rectangle) (image.Image, error) {
	area := box.Intersect(img.Bounds())
	if area.Empty() {
		return nil, fmt.Errorf("crop %v is outside the %v screen", box, img.Bounds())
	}

	if sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(area), nil
	}

	// Generic path for images without SubImage
	dst := image.NewRGBA(area)
	draw.Draw(dst, area, img, area.Min, draw.Src)
	return dst, nil
}
