// Package config loads the screen region layout and the run options.
//
// The region file is YAML with two top-level keys:
//
//	locations:            # region name -> [x, y] or [x1, y1, x2, y2]
//	  pokestop: [540, 1200]
//	  bottom_pokestop_bar: [0, 2000, 1080, 2160]
//	waits:                # region or key name -> seconds after the action
//	  pokestop: 1.5
//	  KEYCODE_BACK: 1
//
// Region names are checked against a fixed set when the file is loaded so
// that a typo fails at start-up instead of in the middle of a run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks configuration errors. They are fatal.
var ErrInvalidConfig = errors.New("invalid configuration")

// Layout is the parsed region file. Treat as read-only after Load.
type Layout struct {
	Locations map[string][]int   `yaml:"locations" validate:"required,min=1,dive,keys,region_name,endkeys,region_shape"`
	Waits     map[string]float64 `yaml:"waits" validate:"dive,keys,wait_name,endkeys,gte=0"`
}

// Load reads and validates the region file at path.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return Parse(data)
}

// Parse decodes and validates a region file.
func Parse(data []byte) (*Layout, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var l Layout
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := newValidator().Struct(&l); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}
	for name, pts := range l.Locations {
		if boxRegions[Region(name)] && len(pts) != 4 {
			return nil, fmt.Errorf("%w: %s must be a box [x1, y1, x2, y2], got %v", ErrInvalidConfig, name, pts)
		}
	}
	return &l, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "region_name", func(fl validator.FieldLevel) bool {
		return isKnownRegion(fl.Field().String())
	})
	mustRegister(v, "wait_name", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return isKnownRegion(name) || isKnownKey(name)
	})
	mustRegister(v, "region_shape", func(fl validator.FieldLevel) bool {
		n := fl.Field().Len()
		if n != 2 && n != 4 {
			return false
		}
		for i := 0; i < n; i++ {
			if fl.Field().Index(i).Int() < 0 {
				return false
			}
		}
		return true
	})
	return v
}

// mustRegister panics when a rule cannot be registered.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "region_name":
			msgs = append(msgs, fmt.Sprintf("unknown region %q", fe.Value()))
		case "wait_name":
			msgs = append(msgs, fmt.Sprintf("unknown wait target %q", fe.Value()))
		case "region_shape":
			msgs = append(msgs, fmt.Sprintf("%s: want [x, y] or [x1, y1, x2, y2] with non-negative values, got %v", fe.Field(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// Require checks that every region in names is configured.
func (l *Layout) Require(names ...Region) error {
	var missing []string
	for _, r := range names {
		if _, ok := l.Locations[string(r)]; !ok {
			missing = append(missing, string(r))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing regions %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	return nil
}

// Point resolves a region to the point to tap: the point itself for a
// 2-tuple, the centre of the box for a 4-tuple.
func (l *Layout) Point(r Region) (image.Point, error) {
	pts, err := l.lookup(r)
	if err != nil {
		return image.Point{}, err
	}
	switch len(pts) {
	case 2:
		return image.Pt(pts[0], pts[1]), nil
	case 4:
		return image.Pt((pts[0]+pts[2])/2, (pts[1]+pts[3])/2), nil
	default:
		return image.Point{}, fmt.Errorf("%w: region %s has %d values", ErrInvalidConfig, r, len(pts))
	}
}

// Box resolves a 4-tuple region to a rectangle (left, top, right, bottom).
func (l *Layout) Box(r Region) (image.Rectangle, error) {
	pts, err := l.lookup(r)
	if err != nil {
		return image.Rectangle{}, err
	}
	if len(pts) != 4 {
		return image.Rectangle{}, fmt.Errorf("%w: region %s is not a box", ErrInvalidConfig, r)
	}
	return image.Rect(pts[0], pts[1], pts[2], pts[3]), nil
}

// Line resolves a 4-tuple region to a swipe from (x1, y1) to (x2, y2).
func (l *Layout) Line(r Region) (from, to image.Point, err error) {
	pts, err := l.lookup(r)
	if err != nil {
		return image.Point{}, image.Point{}, err
	}
	if len(pts) != 4 {
		return image.Point{}, image.Point{}, fmt.Errorf("%w: region %s is not a swipe line", ErrInvalidConfig, r)
	}
	return image.Pt(pts[0], pts[1]), image.Pt(pts[2], pts[3]), nil
}

// Wait returns the post-action wait configured for a region or key name.
func (l *Layout) Wait(name string) (time.Duration, bool) {
	if s, ok := l.Waits[name]; ok {
		return seconds(s), true
	}
	for k, s := range l.Waits {
		if isKnownKey(name) && strings.EqualFold(k, name) {
			return seconds(s), true
		}
	}
	return 0, false
}

func (l *Layout) lookup(r Region) ([]int, error) {
	pts, ok := l.Locations[string(r)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown region %s", ErrInvalidConfig, r)
	}
	return pts, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
