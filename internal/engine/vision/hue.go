package vision

import (
	"errors"
	"fmt"
	"image"

	"github.com/ConserveLee/questr/internal/engine/screen"
)

// ErrAmbiguousHue is returned when a hue is exactly as far from both references.
var ErrAmbiguousHue = errors.New("hue is equidistant from both references")

// Affinity tells which of two reference hues a sample is closer to.
type Affinity int

const (
	CloserToA Affinity = iota + 1
	CloserToB
)

func (a Affinity) String() string {
	switch a {
	case CloserToA:
		return "A"
	case CloserToB:
		return "B"
	default:
		return "none"
	}
}

// HueReading is one hue-affinity sample.
type HueReading struct {
	Hue      uint8
	DistA    int
	DistB    int
	Affinity Affinity
}

// Confidence is how much closer the winning reference is, 0-100.
func (r HueReading) Confidence() int {
	lo, hi := min(r.DistA, r.DistB), max(r.DistA, r.DistB)
	if hi == 0 {
		return 0
	}
	return int((1 - float64(lo)/float64(hi)) * 100)
}

// HueAffinity compares hue against references a and b in the 0-255 hue space
// using the polar distance |hue-ref| mod 255. A tie returns ErrAmbiguousHue.
func HueAffinity(hue, a, b uint8) (HueReading, error) {
	r := HueReading{
		Hue:   hue,
		DistA: polar(hue, a),
		DistB: polar(hue, b),
	}
	switch {
	case r.DistA < r.DistB:
		r.Affinity = CloserToA
	case r.DistB < r.DistA:
		r.Affinity = CloserToB
	default:
		return r, fmt.Errorf("%w: hue %d, %d from %d and %d from %d", ErrAmbiguousHue, hue, r.DistA, a, r.DistB, b)
	}
	return r, nil
}

func polar(hue, ref uint8) int {
	d := int(hue) - int(ref)
	if d < 0 {
		d = -d
	}
	return d % 255
}

// ImageAffinity reduces img to its dominant hue and compares it against a and b.
func ImageAffinity(img image.Image, a, b uint8) (HueReading, error) {
	return HueAffinity(screen.DominantHue(img), a, b)
}
