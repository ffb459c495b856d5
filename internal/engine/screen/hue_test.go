package screen

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(r image.Rectangle, c color.Color) *image.RGBA {
	img := image.NewRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRGBToHSV_Hue(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		hue  uint8
	}{
		{"red", color.RGBA{255, 0, 0, 255}, 0},
		{"green", color.RGBA{0, 255, 0, 255}, 85},
		{"blue", color.RGBA{0, 0, 255, 255}, 170},
		{"cyan", color.RGBA{0, 255, 255, 255}, 127},
		{"magenta", color.RGBA{255, 0, 255, 255}, 212},
		{"violet", color.RGBA{128, 0, 255, 255}, 191},
		{"azure", color.RGBA{0, 140, 255, 255}, 146},
		{"teal", color.RGBA{40, 200, 220, 255}, 132},
		{"gray", color.RGBA{90, 90, 90, 255}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := RGBToHSV(tt.c)
			assert.Equal(t, tt.hue, h)
		})
	}
}

func TestRGBToHSV_SatVal(t *testing.T) {
	_, s, v := RGBToHSV(color.RGBA{0, 0, 255, 255})
	assert.Equal(t, uint8(255), s)
	assert.Equal(t, uint8(255), v)

	_, s, v = RGBToHSV(color.RGBA{90, 90, 90, 255})
	assert.Equal(t, uint8(0), s)
	assert.Equal(t, uint8(90), v)
}

func TestQuantize_KeepsFewColours(t *testing.T) {
	img := solid(image.Rect(0, 0, 10, 4), color.RGBA{0, 140, 255, 255})
	for x := 0; x < 10; x++ {
		img.Set(x, 0, color.RGBA{255, 255, 255, 255})
	}

	q := Quantize(img, PaletteSize)
	assert.Len(t, q.Palette, 2)
	assert.Equal(t, color.RGBA{0, 140, 255, 255}, q.At(5, 2))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, q.At(3, 0))
}

func TestQuantize_LimitsPalette(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), uint8((x + y) * 2), 255})
		}
	}
	q := Quantize(img, 16)
	assert.Len(t, q.Palette, 16)
	assert.Equal(t, img.Bounds(), q.Bounds())
}

func TestDominantHue(t *testing.T) {
	bar := image.Rect(0, 2000, 1080, 2160)
	assert.Equal(t, uint8(146), DominantHue(solid(bar, color.RGBA{0, 140, 255, 255})))
	assert.Equal(t, uint8(212), DominantHue(solid(bar, color.RGBA{255, 0, 255, 255})))
}

func paint(w, h int, f func(x, y int) color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, f(x, y))
		}
	}
	return img
}

// Bars with more colours than the palette: the hue comes from the mean of
// the box holding the centre pixel, not from the centre pixel itself.
func TestDominantHue_QuantizedBars(t *testing.T) {
	tests := []struct {
		name    string
		img     *image.RGBA
		centre  uint8 // hue of the raw centre pixel
		hue     uint8
		palette color.RGBA // box mean under the centre pixel
	}{
		{
			name: "gradient",
			img: paint(400, 20, func(x, y int) color.RGBA {
				return color.RGBA{0, uint8(60 + x*120/400), uint8(255 - y*3), 255}
			}),
			centre:  147,
			hue:     146,
			palette: color.RGBA{0, 122, 223, 255},
		},
		{
			name: "stripes",
			img: paint(300, 12, func(x, y int) color.RGBA {
				return color.RGBA{uint8((x * 7) % 40), uint8(90 + x%150), uint8(250 - y*5), 255}
			}),
			centre:  153,
			hue:     153,
			palette: color.RGBA{13, 93, 215, 255},
		},
		{
			name: "unspun bar",
			img: paint(360, 24, func(x, y int) color.RGBA {
				return color.RGBA{uint8(20 + x/12), uint8(180 + y*2), uint8(200 + x/18), 255}
			}),
			centre:  128,
			hue:     128,
			palette: color.RGBA{35, 205, 210, 255},
		},
		{
			name: "spun bar",
			img: paint(360, 24, func(x, y int) color.RGBA {
				return color.RGBA{uint8(150 + x/12), uint8(40 + y*2), uint8(230 + x/18), 255}
			}),
			centre:  194,
			hue:     194,
			palette: color.RGBA{165, 65, 240, 255},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.img.Bounds()
			raw, _, _ := RGBToHSV(tt.img.At(b.Dx()/2, b.Dy()/2))
			assert.Equal(t, tt.centre, raw)

			q := Quantize(tt.img, PaletteSize)
			require.Len(t, q.Palette, PaletteSize)
			assert.Equal(t, tt.palette, Shrink(q))

			assert.Equal(t, tt.hue, DominantHue(tt.img))
		})
	}
}

// Every colour shares r == g < b, so every box mean is pure blue in hue.
func TestDominantHue_ManyShadesOfOneHue(t *testing.T) {
	img := paint(510, 4, func(x, y int) color.RGBA {
		if x < 255 {
			return color.RGBA{uint8(x), uint8(x), 255, 255}
		}
		return color.RGBA{0, 0, uint8(x - 254), 255}
	})
	assert.Len(t, Quantize(img, PaletteSize).Palette, PaletteSize)
	assert.Equal(t, uint8(170), DominantHue(img))
}

func TestSaveImage(t *testing.T) {
	img := solid(image.Rect(0, 0, 6, 3), color.RGBA{255, 0, 255, 255})
	path := filepath.Join(t.TempDir(), "bar.png")
	require.NoError(t, SaveImage(path, img))

	back, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 3), back.Bounds())
	assert.Equal(t, uint8(212), DominantHue(back))
}

func TestCrop(t *testing.T) {
	img := solid(image.Rect(0, 0, 100, 100), color.RGBA{255, 0, 0, 255})

	c, err := Crop(img, image.Rect(10, 20, 30, 40))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(10, 20, 30, 40), c.Bounds())

	c, err = Crop(img, image.Rect(90, 90, 200, 200))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(90, 90, 100, 100), c.Bounds())

	_, err = Crop(img, image.Rect(200, 200, 300, 300))
	assert.Error(t, err)
}

func TestPNGRoundTrip(t *testing.T) {
	img := solid(image.Rect(0, 0, 4, 4), color.RGBA{0, 255, 255, 255})
	data, err := EncodePNG(img)
	require.NoError(t, err)

	back, err := DecodePNG(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(127), DominantHue(back))

	_, err = DecodePNG([]byte("not a png"))
	assert.Error(t, err)
}
