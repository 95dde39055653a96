package region

import (
	"context"
	"image"
	"log/slog"
)

// GeometryBackend is a detection backend that returns regions with
// normalized bounding boxes directly (e.g. a layout detection service).
type GeometryBackend interface {
	DetectRegions(ctx context.Context, img image.Image) ([]DetectedRegion, error)
}

// TextBackend is a vision-language backend that returns a free-text payload
// describing chart regions (see ParseChartPayload for the expected shape).
type TextBackend interface {
	DescribeRegions(ctx context.Context, img image.Image) (string, error)
}

// RegionSource is the uniform detection interface consumed by the pipeline.
// Implementations may fail; the Detector collapses failures to an empty
// region list.
type RegionSource interface {
	Detect(ctx context.Context, img image.Image) ([]DetectedRegion, error)
}

// GeometrySource adapts a GeometryBackend to the RegionSource interface,
// canonicalizing box corner ordering.
type GeometrySource struct {
	backend GeometryBackend
}

// NewGeometrySource wraps a geometry-bearing detection backend.
func NewGeometrySource(backend GeometryBackend) *GeometrySource {
	return &GeometrySource{backend: backend}
}

// Detect implements RegionSource.
func (s *GeometrySource) Detect(ctx context.Context, img image.Image) ([]DetectedRegion, error) {
	regions, err := s.backend.DetectRegions(ctx, img)
	if err != nil {
		return nil, err
	}
	out := make([]DetectedRegion, 0, len(regions))
	for _, r := range regions {
		if r.HasBox {
			r.Box = r.Box.Canonical()
		}
		out = append(out, r)
	}
	return out, nil
}

// DescriptiveSource adapts a TextBackend to the RegionSource interface by
// parsing its chart JSON payload.
type DescriptiveSource struct {
	backend TextBackend
}

// NewDescriptiveSource wraps a vision-language backend.
func NewDescriptiveSource(backend TextBackend) *DescriptiveSource {
	return &DescriptiveSource{backend: backend}
}

// Detect implements RegionSource.
func (s *DescriptiveSource) Detect(ctx context.Context, img image.Image) ([]DetectedRegion, error) {
	raw, err := s.backend.DescribeRegions(ctx, img)
	if err != nil {
		return nil, err
	}
	return ParseChartPayload(raw)
}

// Static is a fixed region list satisfying RegionSource. Used for tests and
// for replaying previously saved detection results.
type Static []DetectedRegion

// Detect implements RegionSource.
func (s Static) Detect(context.Context, image.Image) ([]DetectedRegion, error) {
	out := make([]DetectedRegion, len(s))
	copy(out, s)
	return out, nil
}

// Detector runs a RegionSource and absorbs its failures. Detection is a
// best-effort enrichment: a backend outage or unparsable response must never
// abort figure extraction, so both collapse to an empty region list.
type Detector struct {
	source RegionSource
	logger *slog.Logger
}

// NewDetector creates a Detector over the given source. A nil logger falls
// back to slog.Default().
func NewDetector(source RegionSource, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{source: source, logger: logger}
}

// Detect returns the normalized region list for an image. It never fails:
// backend and parse errors are logged and yield an empty list.
func (d *Detector) Detect(ctx context.Context, img image.Image) []DetectedRegion {
	if d == nil || d.source == nil {
		return nil
	}
	regions, err := d.source.Detect(ctx, img)
	if err != nil {
		d.logger.Warn("region detection degraded to empty result", "error", err)
		return nil
	}
	return regions
}
