package device

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ConserveLee/questr/internal/engine/screen"
)

// Runner executes a host command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec. Stderr is folded into the error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// ADB drives a device through the adb command line.
type ADB struct {
	Path   string // adb executable
	serial string
	run    Runner
}

// NewADB creates a controller using the adb binary at path.
func NewADB(path string, run Runner) *ADB {
	if path == "" {
		path = "adb"
	}
	if run == nil {
		run = ExecRunner
	}
	return &ADB{Path: path, run: run}
}

// Serial returns the selected device serial.
func (a *ADB) Serial() string {
	return a.serial
}

func (a *ADB) adb(ctx context.Context, args ...string) ([]byte, error) {
	if a.serial != "" {
		args = append([]string{"-s", a.serial}, args...)
	}
	return a.run(ctx, a.Path, args...)
}

// SelectDevice pins later calls to serial id. An empty id picks the only
// attached device and fails if there are none or several.
func (a *ADB) SelectDevice(ctx context.Context, id string) error {
	out, err := a.run(ctx, a.Path, "devices")
	if err != nil {
		return err
	}
	devices := parseDevices(string(out))

	if id == "" {
		switch len(devices) {
		case 0:
			return fmt.Errorf("no adb device attached")
		case 1:
			a.serial = devices[0]
			return nil
		default:
			return fmt.Errorf("%d adb devices attached (%s), pick one with --device-id", len(devices), strings.Join(devices, ", "))
		}
	}

	for _, d := range devices {
		if d == id {
			a.serial = id
			return nil
		}
	}
	// network devices may need a connect first
	if strings.Contains(id, ":") {
		if _, err := a.run(ctx, a.Path, "connect", id); err != nil {
			return err
		}
		a.serial = id
		return nil
	}
	return fmt.Errorf("adb device %s not attached", id)
}

func parseDevices(out string) []string {
	var devices []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == "device" {
			devices = append(devices, fields[0])
		}
	}
	return devices
}

// Screenshot captures the screen as PNG over exec-out.
func (a *ADB) Screenshot(ctx context.Context) (image.Image, error) {
	out, err := a.adb(ctx, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, err
	}
	return screen.DecodePNG(out)
}

func (a *ADB) Tap(ctx context.Context, x, y int) error {
	_, err := a.adb(ctx, "shell", "input", "tap", strconv.Itoa(x), strconv.Itoa(y))
	return err
}

func (a *ADB) Swipe(ctx context.Context, x1, y1, x2, y2 int, d time.Duration) error {
	_, err := a.adb(ctx, "shell", "input", "swipe",
		strconv.Itoa(x1), strconv.Itoa(y1), strconv.Itoa(x2), strconv.Itoa(y2),
		strconv.FormatInt(d.Milliseconds(), 10))
	return err
}

func (a *ADB) Key(ctx context.Context, code string) error {
	_, err := a.adb(ctx, "shell", "input", "keyevent", code)
	return err
}

// Run executes a shell command on the device and returns its output.
func (a *ADB) Run(ctx context.Context, shellCommand string) (string, error) {
	out, err := a.adb(ctx, "shell", shellCommand)
	return string(out), err
}
