// Package action turns region names into device input.
package action

import (
	"context"
	"fmt"
	"time"

	"github.com/ConserveLee/questr/internal/config"
	"github.com/ConserveLee/questr/internal/engine/clock"
	"github.com/ConserveLee/questr/internal/engine/device"
)

// Executor taps, swipes and presses keys by region name and sleeps the
// configured wait after each action.
type Executor struct {
	layout    *config.Layout
	ctrl      device.Controller
	clock     clock.Clock
	debugFunc func(string, ...interface{})
}

// NewExecutor creates an executor over ctrl using the regions in layout.
func NewExecutor(layout *config.Layout, ctrl device.Controller, clk clock.Clock) *Executor {
	return &Executor{
		layout:    layout,
		ctrl:      ctrl,
		clock:     clk,
		debugFunc: func(string, ...interface{}) {}, // No-op by default
	}
}

// SetDebugFunc sets the debug logging function
func (e *Executor) SetDebugFunc(f func(string, ...interface{})) {
	e.debugFunc = f
}

// Tap taps a point region, or the centre of a box region.
func (e *Executor) Tap(ctx context.Context, region config.Region) error {
	p, err := e.layout.Point(region)
	if err != nil {
		return err
	}
	e.debugFunc("[Action] Tap %s at (%d, %d)", region, p.X, p.Y)
	if err := e.ctrl.Tap(ctx, p.X, p.Y); err != nil {
		return fmt.Errorf("tap %s: %w", region, err)
	}
	return e.settle(ctx, string(region))
}

// Swipe drags along a box region from (x1, y1) to (x2, y2) over d.
func (e *Executor) Swipe(ctx context.Context, region config.Region, d time.Duration) error {
	from, to, err := e.layout.Line(region)
	if err != nil {
		return err
	}
	e.debugFunc("[Action] Swipe %s %v -> %v in %v", region, from, to, d)
	if err := e.ctrl.Swipe(ctx, from.X, from.Y, to.X, to.Y, d); err != nil {
		return fmt.Errorf("swipe %s: %w", region, err)
	}
	return e.settle(ctx, string(region))
}

// Key sends a key event.
func (e *Executor) Key(ctx context.Context, key config.Key) error {
	e.debugFunc("[Action] Key %s", key)
	if err := e.ctrl.Key(ctx, string(key)); err != nil {
		return fmt.Errorf("key %s: %w", key, err)
	}
	return e.settle(ctx, string(key))
}

func (e *Executor) settle(ctx context.Context, name string) error {
	wait, ok := e.layout.Wait(name)
	if !ok || wait == 0 {
		return nil
	}
	e.debugFunc("[Action] Waiting %v after %s", wait, name)
	return e.clock.Sleep(ctx, wait)
}
