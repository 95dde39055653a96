// Package region normalizes the output of visual detection backends into a
// uniform list of typed regions with percentage-based bounding boxes.
package region

// NormBox is an axis-aligned bounding box in normalized units: each
// coordinate is a percentage of the source image width or height, so the
// conceptual range is [0,100]. Out-of-range values are tolerated here and
// clamped during pixel mapping.
type NormBox struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// NewNormBox constructs a NormBox, swapping corners so X1<=X2 and Y1<=Y2.
// Upstream backends do not guarantee corner ordering.
func NewNormBox(x1, y1, x2, y2 float64) NormBox {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return NormBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Canonical returns a copy with corners ordered.
func (b NormBox) Canonical() NormBox {
	return NewNormBox(b.X1, b.Y1, b.X2, b.Y2)
}

// Width returns the box width in normalized units.
func (b NormBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the box height in normalized units.
func (b NormBox) Height() float64 { return b.Y2 - b.Y1 }

// Expand grows the box by pct percent of its own width and height on each
// side. Used to add margin around detected figures so crops do not cut off
// content. The result may exceed [0,100]; pixel mapping clamps it.
func (b NormBox) Expand(pct float64) NormBox {
	if pct <= 0 {
		return b
	}
	dx := b.Width() * pct / 100
	dy := b.Height() * pct / 100
	return NormBox{X1: b.X1 - dx, Y1: b.Y1 - dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// DetectedRegion is one area of interest reported by a detection backend.
type DetectedRegion struct {
	// Type is a free-form label such as "bar", "line" or "figure".
	Type string
	// Description is a short human-readable summary of the region content.
	Description string
	// Box is the normalized bounding box. Only valid when HasBox is true;
	// descriptive backends may report regions without geometry.
	Box    NormBox
	HasBox bool
	// Confidence is the backend's detection confidence, 0 when unreported.
	Confidence float64
}
