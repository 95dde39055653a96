package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"

	"github.com/notefig/notefig/internal/blocks"
	"github.com/notefig/notefig/internal/pipeline"
	"github.com/notefig/notefig/internal/region"
)

// mockPipeline is a canned extractPipeline implementation for handler tests.
type mockPipeline struct {
	result *pipeline.Result
	err    error
	stages []string
}

func (m *mockPipeline) ProcessImage(_ context.Context, img image.Image, filename, _ string) (*pipeline.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	b := img.Bounds()
	return &pipeline.Result{
		BaseName: filename,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

func (m *mockPipeline) ProcessImageProgress(ctx context.Context, img image.Image, filename, rawText string,
	progress pipeline.ProgressFunc,
) (*pipeline.Result, error) {
	for _, stage := range []string{"detect", "crop", "synthesize"} {
		m.stages = append(m.stages, stage)
		if progress != nil {
			progress(stage, 1, 1)
		}
	}
	return m.ProcessImage(ctx, img, filename, rawText)
}

func (m *mockPipeline) Synthesize(rawText string, regions []region.DetectedRegion) []blocks.ContentBlock {
	return blocks.NewSynthesizer(blocks.DefaultTables()).Synthesize(rawText, regions)
}

// testImageBase64 encodes a small solid PNG as a base64 payload.
func testImageBase64(width, height int) string {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
