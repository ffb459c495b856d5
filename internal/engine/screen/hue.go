package screen

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// PaletteSize is the number of colours the quantizer reduces a crop to.
const PaletteSize = 256

// DominantHue reduces img to a single hue in the 0-255 hue space:
// quantize, shrink to one pixel, convert to HSV, take H.
// The hue thresholds used by the classifier were tuned against exactly
// this reduction.
func DominantHue(img image.Image) uint8 {
	h, _, _ := RGBToHSV(Shrink(Quantize(img, PaletteSize)))
	return h
}

// Shrink reduces img to one pixel with nearest-neighbour sampling: the
// pixel under the centre of the image.
func Shrink(img image.Image) color.Color {
	b := img.Bounds()
	return img.At(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2)
}

// RGBToHSV converts c to 8-bit H, S, V with the same arithmetic
// as the imaging library the thresholds were calibrated with.
func RGBToHSV(c color.Color) (h, s, v uint8) {
	r32, g32, b32, _ := c.RGBA()
	r, g, b := uint8(r32>>8), uint8(g32>>8), uint8(b32>>8)

	maxc := max(r, g, b)
	minc := min(r, g, b)
	v = maxc
	if minc == maxc {
		return 0, 0, v
	}

	// single precision intermediates, as in the reference conversion
	cr := float32(maxc - minc)
	sat := cr / float32(maxc)
	rc := float32(maxc-r) / cr
	gc := float32(maxc-g) / cr
	bc := float32(maxc-b) / cr

	var hue float32
	switch {
	case r == maxc:
		hue = float32(float64(bc) - float64(gc))
	case g == maxc:
		hue = float32(2.0 + float64(rc) - float64(bc))
	default:
		hue = float32(4.0 + float64(gc) - float64(rc))
	}
	hue = float32(math.Mod(float64(hue)/6.0+1.0, 1.0))

	return clip8(int(float64(hue) * 255.0)), clip8(int(float64(sat) * 255.0)), v
}

func clip8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

type bucket struct {
	c     color.RGBA
	count int
}

type box struct {
	buckets []bucket
	pixels  int
}

// Quantize maps img onto at most n colours with a median cut. An image
// with n colours or fewer keeps its exact colours.
func Quantize(img image.Image, n int) *image.Paletted {
	b := img.Bounds()

	hist := map[color.RGBA]int{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[toRGBA(img.At(x, y))]++
		}
	}

	buckets := make([]bucket, 0, len(hist))
	for c, count := range hist {
		buckets = append(buckets, bucket{c: c, count: count})
	}
	// map order is random; sort so the cut is deterministic
	sort.Slice(buckets, func(i, j int) bool {
		return packRGB(buckets[i].c) < packRGB(buckets[j].c)
	})

	boxes := []box{{buckets: buckets, pixels: b.Dx() * b.Dy()}}
	for len(boxes) < n {
		i := busiestSplittable(boxes)
		if i < 0 {
			break
		}
		lo, hi := split(boxes[i])
		boxes[i] = lo
		boxes = append(boxes, hi)
	}

	palette := make(color.Palette, len(boxes))
	index := map[color.RGBA]uint8{}
	for i, bx := range boxes {
		palette[i] = mean(bx)
		for _, bk := range bx.buckets {
			index[bk.c] = uint8(i)
		}
	}

	out := image.NewPaletted(b, palette)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetColorIndex(x, y, index[toRGBA(img.At(x, y))])
		}
	}
	return out
}

func toRGBA(c color.Color) color.RGBA {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
}

func packRGB(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func channel(c color.RGBA, ch int) uint8 {
	switch ch {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

// busiestSplittable picks the most populated box holding more than one colour.
func busiestSplittable(boxes []box) int {
	best := -1
	for i, bx := range boxes {
		if len(bx.buckets) < 2 {
			continue
		}
		if best < 0 || bx.pixels > boxes[best].pixels {
			best = i
		}
	}
	return best
}

// split cuts a box at the pixel-weighted median of its widest channel.
func split(bx box) (box, box) {
	ch, widest := 0, -1
	for c := 0; c < 3; c++ {
		lo, hi := uint8(255), uint8(0)
		for _, bk := range bx.buckets {
			v := channel(bk.c, c)
			lo = min(lo, v)
			hi = max(hi, v)
		}
		if int(hi)-int(lo) > widest {
			ch, widest = c, int(hi)-int(lo)
		}
	}

	sorted := append([]bucket(nil), bx.buckets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return channel(sorted[i].c, ch) < channel(sorted[j].c, ch)
	})

	half := bx.pixels / 2
	acc, cut := 0, 1
	for i, bk := range sorted[:len(sorted)-1] {
		acc += bk.count
		cut = i + 1
		if acc >= half {
			break
		}
	}

	lo := box{buckets: sorted[:cut]}
	hi := box{buckets: sorted[cut:]}
	for _, bk := range lo.buckets {
		lo.pixels += bk.count
	}
	hi.pixels = bx.pixels - lo.pixels
	return lo, hi
}

func mean(bx box) color.RGBA {
	var r, g, b, n int
	for _, bk := range bx.buckets {
		r += int(bk.c.R) * bk.count
		g += int(bk.c.G) * bk.count
		b += int(bk.c.B) * bk.count
		n += bk.count
	}
	if n == 0 {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{
		R: uint8((r + n/2) / n),
		G: uint8((g + n/2) / n),
		B: uint8((b + n/2) / n),
		A: 0xff,
	}
}
