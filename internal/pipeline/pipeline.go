// Package pipeline wires region detection, coordinate mapping, artifact
// persistence and content block synthesis into one run per source image.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/notefig/notefig/internal/artifact"
	"github.com/notefig/notefig/internal/blocks"
	"github.com/notefig/notefig/internal/crop"
	"github.com/notefig/notefig/internal/region"
	"github.com/notefig/notefig/internal/utils"
)

// ErrInvalidInput marks missing or unacceptable input images.
var ErrInvalidInput = errors.New("invalid input")

// Config holds pipeline settings.
type Config struct {
	// OutputDir receives crop artifacts.
	OutputDir string
	// PaddingPercent expands each detected box by this percentage of its own
	// size before mapping. Zero keeps the mapping exact.
	PaddingPercent float64
	// JPEGQuality for persisted crops (1-100, 0 selects the default).
	JPEGQuality int
	// MaxPixels rejects decoded images above this pixel count; 0 disables.
	MaxPixels int64
}

// DefaultConfig returns pipeline defaults.
func DefaultConfig() Config {
	return Config{
		OutputDir:      "temp_image_storage",
		PaddingPercent: 0,
		JPEGQuality:    artifact.DefaultJPEGQuality,
		MaxPixels:      64 * 1024 * 1024,
	}
}

// ProgressFunc receives coarse progress updates during a run.
type ProgressFunc func(stage string, completed, total int)

// Result is the product of one pipeline run.
type Result struct {
	BaseName  string
	Width     int
	Height    int
	Regions   []region.DetectedRegion
	Artifacts []artifact.Artifact
	Blocks    []blocks.ContentBlock
}

// Pipeline runs the extraction sequence for single images. A Pipeline is
// safe for concurrent runs: all state is immutable after construction and
// output-directory creation is idempotent.
type Pipeline struct {
	cfg      Config
	detector *region.Detector
	store    *artifact.Store
	synth    *blocks.Synthesizer
	logger   *slog.Logger
}

// New builds a pipeline. The source may be nil, in which case detection
// yields no regions and runs still produce text blocks (degrade condition
// for an unavailable backend).
func New(cfg Config, source region.RegionSource, tables blocks.Tables, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultConfig().OutputDir
	}
	store, err := artifact.NewStore(cfg.OutputDir, cfg.JPEGQuality)
	if err != nil {
		return nil, err
	}

	var detector *region.Detector
	if source != nil {
		detector = region.NewDetector(source, logger)
	}

	return &Pipeline{
		cfg:      cfg,
		detector: detector,
		store:    store,
		synth:    blocks.NewSynthesizer(tables),
		logger:   logger,
	}, nil
}

// OutputDir returns the artifact directory in use.
func (p *Pipeline) OutputDir() string { return p.store.Dir() }

// Synthesize builds content blocks from raw text and region annotations
// without running detection or persistence.
func (p *Pipeline) Synthesize(rawText string, regions []region.DetectedRegion) []blocks.ContentBlock {
	return p.synth.Synthesize(rawText, regions)
}

// ProcessImage runs detection, cropping, persistence and block synthesis for
// one image. rawText is the externally extracted textual description of the
// image; it may be empty. Detection failures degrade to an empty region
// list, while artifact write failures fail the run.
func (p *Pipeline) ProcessImage(ctx context.Context, img image.Image, filename, rawText string) (*Result, error) {
	return p.process(ctx, img, filename, rawText, nil)
}

// ProcessImageProgress is ProcessImage with progress callbacks, used by
// streaming transports.
func (p *Pipeline) ProcessImageProgress(
	ctx context.Context,
	img image.Image,
	filename, rawText string,
	progress ProgressFunc,
) (*Result, error) {
	return p.process(ctx, img, filename, rawText, progress)
}

func (p *Pipeline) process(
	ctx context.Context,
	img image.Image,
	filename, rawText string,
	progress ProgressFunc,
) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	if err := utils.ValidatePixelBudget(img, p.cfg.MaxPixels); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bounds := img.Bounds()
	baseName := utils.BaseName(filename)
	report := func(stage string, done, total int) {
		if progress != nil {
			progress(stage, done, total)
		}
	}

	report("detecting", 0, 1)
	regions := p.detector.Detect(ctx, img)
	report("detecting", 1, 1)
	p.logger.Debug("region detection finished",
		"base_name", baseName, "regions", len(regions))

	// Index counts only valid (non-degenerate) regions so artifact names
	// stay contiguous from zero.
	artifacts := make([]artifact.Artifact, 0, len(regions))
	for _, r := range regions {
		sub, rect, ok := crop.Region(img, r, p.cfg.PaddingPercent)
		if !ok {
			if r.HasBox {
				p.logger.Debug("dropping degenerate region",
					"base_name", baseName, "type", r.Type)
			}
			continue
		}
		a, err := p.store.Persist(baseName, len(artifacts), sub)
		if err != nil {
			// A partial manifest would be misleading; surface the failure.
			return nil, err
		}
		p.logger.Debug("persisted figure crop",
			"path", a.Path, "rect", rect.String())
		artifacts = append(artifacts, a)
		report("cropping", len(artifacts), len(regions))
	}

	report("synthesizing", 0, 1)
	contentBlocks := p.synth.Synthesize(rawText, regions)
	report("synthesizing", 1, 1)

	return &Result{
		BaseName:  baseName,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Regions:   regions,
		Artifacts: artifacts,
		Blocks:    contentBlocks,
	}, nil
}
