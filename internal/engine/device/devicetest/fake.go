// Package devicetest provides a scriptable in-memory device for tests.
package devicetest

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"
	"time"
)

// Patch paints Rect with Color.
type Patch struct {
	Rect  image.Rectangle
	Color color.Color
}

// Frame is what the screen shows: coloured patches and, for OCR, the text
// visible in a crop keyed by the crop's top-left corner.
type Frame struct {
	Patches []Patch
	Text    map[image.Point]string
}

// Fake is a device and OCR engine in one. Render draws the next screenshot
// and OnCall sees every input or shell call before it is answered.
type Fake struct {
	Bounds image.Rectangle
	Render func() Frame
	OnCall func(call string) (string, error)

	mu    sync.Mutex
	calls []string
	frame Frame
}

// New returns a fake with a w x h screen.
func New(w, h int) *Fake {
	return &Fake{Bounds: image.Rect(0, 0, w, h)}
}

func (f *Fake) call(line string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, line)
	hook := f.OnCall
	f.mu.Unlock()
	if hook == nil {
		return "", nil
	}
	return hook(line)
}

// Calls returns every recorded call, screenshots included.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many recorded calls start with prefix.
func (f *Fake) Count(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *Fake) Screenshot(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := f.call("screenshot"); err != nil {
		return nil, err
	}
	var fr Frame
	if f.Render != nil {
		fr = f.Render()
	}
	f.mu.Lock()
	f.frame = fr
	f.mu.Unlock()

	img := image.NewRGBA(f.Bounds)
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for _, p := range fr.Patches {
		draw.Draw(img, p.Rect, image.NewUniform(p.Color), image.Point{}, draw.Src)
	}
	return img, nil
}

// ExtractText answers OCR from the text of the last rendered frame.
func (f *Fake) ExtractText(ctx context.Context, img image.Image) (string, error) {
	if _, err := f.call(fmt.Sprintf("ocr %d %d", img.Bounds().Min.X, img.Bounds().Min.Y)); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame.Text[img.Bounds().Min], nil
}

func (f *Fake) Tap(_ context.Context, x, y int) error {
	_, err := f.call(fmt.Sprintf("tap %d %d", x, y))
	return err
}

func (f *Fake) Swipe(_ context.Context, x1, y1, x2, y2 int, d time.Duration) error {
	_, err := f.call(fmt.Sprintf("swipe %d %d %d %d %v", x1, y1, x2, y2, d))
	return err
}

func (f *Fake) Key(_ context.Context, code string) error {
	_, err := f.call("key " + code)
	return err
}

func (f *Fake) SelectDevice(_ context.Context, id string) error {
	_, err := f.call("select " + id)
	return err
}

func (f *Fake) Run(_ context.Context, shellCommand string) (string, error) {
	return f.call("run " + shellCommand)
}
