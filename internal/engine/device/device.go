// Package device talks to the phone: screenshots, input events and shell commands.
package device

import (
	"context"
	"image"
	"time"
)

// Controller is the remote device. Every call blocks until the device
// answers or fails.
type Controller interface {
	Screenshot(ctx context.Context) (image.Image, error)
	Tap(ctx context.Context, x, y int) error
	Swipe(ctx context.Context, x1, y1, x2, y2 int, d time.Duration) error
	Key(ctx context.Context, code string) error
	SelectDevice(ctx context.Context, id string) error
	Run(ctx context.Context, shellCommand string) (string, error)
}
