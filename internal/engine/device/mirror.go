package device

import (
	"context"
	"fmt"
	"image"
	"regexp"
	"strconv"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
	"github.com/nfnt/resize"
)

// Mirror drives a device shown in a desktop mirroring window (scrcpy and
// the like): frames come from a desktop capture and taps/swipes are mouse
// events. Keys and shell commands still go through adb.
type Mirror struct {
	*ADB

	DisplayIndex int
	window       image.Rectangle // global desktop coordinates
	deviceSize   image.Point
	debugFunc    func(string, ...interface{})
}

// NewMirror creates a mirror backend on top of an adb connection.
func NewMirror(adb *ADB, displayIndex int) *Mirror {
	return &Mirror{
		ADB:          adb,
		DisplayIndex: displayIndex,
		debugFunc:    func(string, ...interface{}) {}, // No-op by default
	}
}

// SetDebugFunc sets the debug logging function
func (m *Mirror) SetDebugFunc(f func(string, ...interface{})) {
	m.debugFunc = f
}

// Attach finds the mirror window by process name and reads the device
// resolution. Without a matching window the whole display is used.
func (m *Mirror) Attach(ctx context.Context, processName string) error {
	size, err := m.ADB.ScreenSize(ctx)
	if err != nil {
		return err
	}
	m.deviceSize = size

	m.window = screenshot.GetDisplayBounds(m.DisplayIndex)
	if pids, err := robotgo.FindIds(processName); err == nil && len(pids) > 0 {
		x, y, w, h := robotgo.GetBounds(pids[0])
		if w > 0 && h > 0 {
			m.window = image.Rect(x, y, x+w, y+h)
		}
	}
	if m.window.Empty() {
		return fmt.Errorf("display %d has no usable bounds", m.DisplayIndex)
	}
	m.debugFunc("Mirror window %v for a %dx%d device", m.window, size.X, size.Y)
	return nil
}

// SetWindow overrides the capture rectangle (global desktop coordinates).
func (m *Mirror) SetWindow(r image.Rectangle) {
	m.window = r
}

// ToDesktop maps a device pixel to desktop coordinates.
func (m *Mirror) ToDesktop(x, y int) (int, int) {
	if m.deviceSize.X == 0 || m.deviceSize.Y == 0 {
		return m.window.Min.X + x, m.window.Min.Y + y
	}
	sx := m.window.Min.X + x*m.window.Dx()/m.deviceSize.X
	sy := m.window.Min.Y + y*m.window.Dy()/m.deviceSize.Y
	return sx, sy
}

// Screenshot captures the mirror window and scales it to device resolution
// so region coordinates stay in device pixels.
func (m *Mirror) Screenshot(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(m.window)
	if err != nil {
		return nil, fmt.Errorf("failed to capture mirror window %v: %v", m.window, err)
	}
	if m.deviceSize.X == 0 || m.deviceSize.Y == 0 {
		return img, nil
	}
	return resize.Resize(uint(m.deviceSize.X), uint(m.deviceSize.Y), img, resize.Bilinear), nil
}

func (m *Mirror) Tap(ctx context.Context, x, y int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sx, sy := m.ToDesktop(x, y)
	robotgo.Move(sx, sy)
	robotgo.Click("left")
	return nil
}

// swipeSteps is how many mouse moves a drag is split into.
const swipeSteps = 20

func (m *Mirror) Swipe(ctx context.Context, x1, y1, x2, y2 int, d time.Duration) error {
	sx1, sy1 := m.ToDesktop(x1, y1)
	sx2, sy2 := m.ToDesktop(x2, y2)

	robotgo.Move(sx1, sy1)
	if err := robotgo.Toggle("left"); err != nil {
		return fmt.Errorf("mouse down: %w", err)
	}
	defer robotgo.Toggle("left", "up")

	step := d / swipeSteps
	for i := 1; i <= swipeSteps; i++ {
		x := sx1 + (sx2-sx1)*i/swipeSteps
		y := sy1 + (sy2-sy1)*i/swipeSteps
		robotgo.Move(x, y)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step):
		}
	}
	return nil
}

var wmSize = regexp.MustCompile(`(?:Override|Physical) size:\s*(\d+)x(\d+)`)

// ScreenSize reads the device resolution with `wm size`. An override size
// wins over the physical one.
func (a *ADB) ScreenSize(ctx context.Context) (image.Point, error) {
	out, err := a.Run(ctx, "wm size")
	if err != nil {
		return image.Point{}, err
	}
	matches := wmSize.FindAllStringSubmatch(out, -1)
	if len(matches) == 0 {
		return image.Point{}, fmt.Errorf("unexpected wm size output %q", out)
	}
	last := matches[len(matches)-1]
	w, _ := strconv.Atoi(last[1])
	h, _ := strconv.Atoi(last[2])
	return image.Pt(w, h), nil
}
