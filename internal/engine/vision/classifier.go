// Package vision decides which screen the game is on, from OCR text of
// configured regions or from the hue of a status bar.
package vision

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/ConserveLee/questr/internal/config"
	"github.com/ConserveLee/questr/internal/engine/screen"
)

// ScreenState is the classified screen.
type ScreenState int

const (
	StateUnknown ScreenState = iota
	StateWorld
	StatePassengerDialog
	StateEggDialog
	StateMenu
)

func (s ScreenState) String() string {
	switch s {
	case StateWorld:
		return "on_world"
	case StatePassengerDialog:
		return "on_passenger_dialog"
	case StateEggDialog:
		return "on_egg_dialog"
	case StateMenu:
		return "on_menu"
	default:
		return "unknown"
	}
}

// TextExtractor is the OCR engine.
type TextExtractor interface {
	ExtractText(ctx context.Context, img image.Image) (string, error)
}

// Trigger reports State when any of Tokens appears in the text of Region.
type Trigger struct {
	State    ScreenState
	Region   config.Region
	Tokens   []string
	FoldCase bool
}

// Matches reports whether text contains any token.
func (t Trigger) Matches(text string) bool {
	for _, tok := range t.Tokens {
		if t.FoldCase {
			if strings.Contains(strings.ToLower(text), strings.ToLower(tok)) {
				return true
			}
			continue
		}
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

// DialogTriggers are checked in order; the first match wins.
var DialogTriggers = []Trigger{
	{State: StatePassengerDialog, Region: config.RegionPassengerBox, Tokens: []string{"PASSENGER"}},
	{State: StateEggDialog, Region: config.RegionHatchBox, Tokens: []string{"Oh", "?"}},
	{State: StateMenu, Region: config.RegionShopTextBox, Tokens: []string{"SHOP"}},
}

// Classifier reads text out of configured regions of a screenshot.
type Classifier struct {
	layout   *config.Layout
	ocr      TextExtractor
	triggers []Trigger
	debug    func(string, ...interface{})
}

// NewClassifier creates a classifier using the default dialog triggers.
func NewClassifier(layout *config.Layout, ocr TextExtractor) *Classifier {
	return &Classifier{
		layout:   layout,
		ocr:      ocr,
		triggers: DialogTriggers,
		debug:    func(string, ...interface{}) {}, // No-op by default
	}
}

// SetDebugFunc sets the debug logging function
func (c *Classifier) SetDebugFunc(f func(string, ...interface{})) {
	c.debug = f
}

// ReadRegion OCRs one region of img, flattened to a single line.
func (c *Classifier) ReadRegion(ctx context.Context, img image.Image, region config.Region) (string, error) {
	box, err := c.layout.Box(region)
	if err != nil {
		return "", err
	}
	crop, err := screen.Crop(img, box)
	if err != nil {
		return "", fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	text, err := c.ocr.ExtractText(ctx, crop)
	if err != nil {
		return "", fmt.Errorf("ocr %s: %w", region, err)
	}
	text = strings.ReplaceAll(text, "\n", " ")
	c.debug("[OCR] %s: %q", region, text)
	return text, nil
}

// Classify returns the first dialog whose trigger matches, or StateWorld.
func (c *Classifier) Classify(ctx context.Context, img image.Image) (ScreenState, error) {
	for _, t := range c.triggers {
		text, err := c.ReadRegion(ctx, img, t.Region)
		if err != nil {
			return StateUnknown, err
		}
		if t.Matches(text) {
			return t.State, nil
		}
	}
	return StateWorld, nil
}

// ContainsAll reports whether every token appears in the text of region.
func (c *Classifier) ContainsAll(ctx context.Context, img image.Image, region config.Region, tokens ...string) (bool, error) {
	text, err := c.ReadRegion(ctx, img, region)
	if err != nil {
		return false, err
	}
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false, nil
		}
	}
	return true, nil
}

// HueOf returns the hue affinity of region in img against references a and b.
func (c *Classifier) HueOf(img image.Image, region config.Region, a, b uint8) (HueReading, error) {
	box, err := c.layout.Box(region)
	if err != nil {
		return HueReading{}, err
	}
	crop, err := screen.Crop(img, box)
	if err != nil {
		return HueReading{}, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return ImageAffinity(crop, a, b)
}
