package batch

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notefig/notefig/internal/blocks"
	"github.com/notefig/notefig/internal/pipeline"
	"github.com/notefig/notefig/internal/region"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.NoError(t, png.Encode(f, img))
}

func newTestRunner(t *testing.T, workers int) *Runner {
	t.Helper()
	cfg := pipeline.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	source := region.Static{{
		Type: "bar", Description: "d", Box: region.NewNormBox(10, 10, 60, 50), HasBox: true,
	}}
	p, err := pipeline.New(cfg, source, blocks.DefaultTables(), nil)
	require.NoError(t, err)
	return NewRunner(p, workers, nil)
}

func TestRunProcessesAllImages(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 3)
	for i, name := range []string{"a.png", "b.png", "c.png"} {
		paths[i] = filepath.Join(dir, name)
		writePNG(t, paths[i], 100, 100)
	}

	runner := newTestRunner(t, 2)
	results := runner.Run(context.Background(), paths)
	require.Len(t, results, 3)

	for i, res := range results {
		assert.Equal(t, paths[i], res.Path)
		require.NoError(t, res.Err)
		require.NotNil(t, res.Result)
		assert.Len(t, res.Result.Artifacts, 1)
	}

	// Distinct base names keep artifacts apart.
	assert.Equal(t, "a_figure_0.jpg", results[0].Result.Artifacts[0].Filename())
	assert.Equal(t, "b_figure_0.jpg", results[1].Result.Artifacts[0].Filename())
}

func TestRunRecordsPerItemFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writePNG(t, good, 50, 50)
	missing := filepath.Join(dir, "missing.png")

	runner := newTestRunner(t, 1)
	results := runner.Run(context.Background(), []string{good, missing})
	require.Len(t, results, 2)

	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	assert.Nil(t, results[1].Result)
}

func TestRunEmptyInput(t *testing.T) {
	runner := newTestRunner(t, 4)
	assert.Empty(t, runner.Run(context.Background(), nil))
}

func TestRunCancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writePNG(t, path, 50, 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newTestRunner(t, 1)
	results := runner.Run(ctx, []string{path})
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
}
