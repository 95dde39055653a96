// Package crop maps normalized percentage bounding boxes onto pixel
// rectangles and extracts the corresponding sub-images.
package crop

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/notefig/notefig/internal/region"
)

// ToPixelRect converts a normalized box into a pixel rectangle against an
// image of width w and height h. Coordinates are percentages of the image
// dimensions; values outside [0,100] are clamped, not rejected. The second
// return value is false when the rectangle collapses to zero area after
// clamping, in which case no crop should be produced.
func ToPixelRect(box region.NormBox, w, h int) (image.Rectangle, bool) {
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	box = box.Canonical()

	px1 := clampInt(int(math.Round(box.X1/100*float64(w))), 0, w)
	py1 := clampInt(int(math.Round(box.Y1/100*float64(h))), 0, h)
	px2 := clampInt(int(math.Round(box.X2/100*float64(w))), 0, w)
	py2 := clampInt(int(math.Round(box.Y2/100*float64(h))), 0, h)

	if px1 >= px2 || py1 >= py2 {
		return image.Rectangle{}, false
	}
	return image.Rect(px1, py1, px2, py2), true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Crop extracts the pixel sub-buffer for rect. The source image is never
// mutated. An empty intersection yields a zero-size image.
func Crop(img image.Image, rect image.Rectangle) image.Image {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return imaging.New(0, 0, color.Transparent)
	}
	return imaging.Crop(img, rect)
}

// Region maps a detected region (with optional padding percentage) to a
// cropped sub-image. Returns false for regions without geometry or whose
// rectangle degenerates after clamping.
func Region(img image.Image, r region.DetectedRegion, paddingPct float64) (image.Image, image.Rectangle, bool) {
	if !r.HasBox {
		return nil, image.Rectangle{}, false
	}
	b := img.Bounds()
	rect, ok := ToPixelRect(r.Box.Expand(paddingPct), b.Dx(), b.Dy())
	if !ok {
		return nil, image.Rectangle{}, false
	}
	return Crop(img, rect), rect, true
}
