package pipeline

import (
	"image"
	"image/color"

	"github.com/notefig/notefig/internal/crop"
	"github.com/notefig/notefig/internal/region"
)

// RenderOverlay draws the mapped pixel rectangles of regions onto a copy of
// img for debugging detection quality. paddingPct must match the value used
// for cropping so the drawn rectangles line up with the persisted crops.
// Regions without geometry or with degenerate rectangles are skipped.
func RenderOverlay(img image.Image, regions []region.DetectedRegion, col color.Color, paddingPct float64) *image.RGBA {
	if img == nil {
		return nil
	}
	if col == nil {
		col = color.RGBA{R: 255, A: 255}
	}

	b := img.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, img.At(x, y))
		}
	}

	for _, r := range regions {
		if !r.HasBox {
			continue
		}
		rect, ok := crop.ToPixelRect(r.Box.Expand(paddingPct), b.Dx(), b.Dy())
		if !ok {
			continue
		}
		drawRect(dst, rect, col, 2)
	}
	return dst
}

// drawRect draws an axis-aligned rectangle outline into dst.
func drawRect(dst *image.RGBA, rect image.Rectangle, col color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	for t := range thickness {
		yTop := rect.Min.Y + t
		yBot := rect.Max.Y - 1 - t
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Set(x, yTop, col)
			dst.Set(x, yBot, col)
		}
	}
	for t := range thickness {
		xLeft := rect.Min.X + t
		xRight := rect.Max.X - 1 - t
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			dst.Set(xLeft, y, col)
			dst.Set(xRight, y, col)
		}
	}
}
