package crop

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notefig/notefig/internal/region"
)

func TestToPixelRect(t *testing.T) {
	cases := []struct {
		name string
		box  region.NormBox
		w, h int
		want image.Rectangle
		ok   bool
	}{
		{
			name: "interior box",
			box:  region.NewNormBox(10, 10, 60, 50),
			w:    1000, h: 800,
			want: image.Rect(100, 80, 600, 400),
			ok:   true,
		},
		{
			name: "full image",
			box:  region.NewNormBox(0, 0, 100, 100),
			w:    640, h: 480,
			want: image.Rect(0, 0, 640, 480),
			ok:   true,
		},
		{
			name: "out of range clamped",
			box:  region.NewNormBox(-20, -10, 120, 150),
			w:    200, h: 100,
			want: image.Rect(0, 0, 200, 100),
			ok:   true,
		},
		{
			name: "inverted corners swapped",
			box:  region.NormBox{X1: 60, Y1: 50, X2: 10, Y2: 10},
			w:    1000, h: 800,
			want: image.Rect(100, 80, 600, 400),
			ok:   true,
		},
		{
			name: "zero area dropped",
			box:  region.NewNormBox(50, 50, 50, 80),
			w:    100, h: 100,
			ok:   false,
		},
		{
			name: "collapses after clamping",
			box:  region.NewNormBox(110, 110, 150, 150),
			w:    100, h: 100,
			ok:   false,
		},
		{
			name: "rounding",
			box:  region.NewNormBox(0.4, 0.4, 99.6, 99.6),
			w:    1000, h: 1000,
			want: image.Rect(4, 4, 996, 996),
			ok:   true,
		},
		{
			name: "invalid dimensions",
			box:  region.NewNormBox(0, 0, 100, 100),
			w:    0, h: 100,
			ok:   false,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rect, ok := ToPixelRect(c.box, c.w, c.h)
			require.Equal(t, c.ok, ok)
			if ok {
				assert.Equal(t, c.want, rect)
			}
		})
	}
}

func TestCropDimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 800))
	rect, ok := ToPixelRect(region.NewNormBox(10, 10, 60, 50), 1000, 800)
	require.True(t, ok)

	sub := Crop(img, rect)
	assert.Equal(t, 500, sub.Bounds().Dx())
	assert.Equal(t, 320, sub.Bounds().Dy())
}

func TestCropOutsideBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	sub := Crop(img, image.Rect(20, 20, 30, 30))
	assert.True(t, sub.Bounds().Empty())
}

func TestRegionWithoutGeometry(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	_, _, ok := Region(img, region.DetectedRegion{Type: "bar", Description: "text only"}, 0)
	assert.False(t, ok)
}

func TestRegionWithPadding(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 1000))
	r := region.DetectedRegion{
		Type:   "bar",
		Box:    region.NewNormBox(20, 20, 40, 40),
		HasBox: true,
	}

	sub, rect, ok := Region(img, r, 0)
	require.True(t, ok)
	assert.Equal(t, image.Rect(200, 200, 400, 400), rect)
	assert.Equal(t, 200, sub.Bounds().Dx())

	// 10% padding grows the box by 2 units on each side.
	_, padded, ok := Region(img, r, 10)
	require.True(t, ok)
	assert.Equal(t, image.Rect(180, 180, 420, 420), padded)
}
