// Package artifact assigns deterministic filenames to cropped figures and
// persists them as JPEG files.
package artifact

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality is used when no quality is configured.
const DefaultJPEGQuality = 90

// Artifact describes one persisted crop.
type Artifact struct {
	BaseName string `json:"base_name"`
	Index    int    `json:"index"`
	Path     string `json:"path"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Filename returns the artifact file name without its directory.
func (a Artifact) Filename() string { return filepath.Base(a.Path) }

// Store writes crop artifacts into a single output directory. Naming is
// deterministic: re-running extraction for the same base name overwrites the
// previous files rather than creating incrementing suffixes.
type Store struct {
	outputDir string
	quality   int
}

// NewStore creates a store rooted at outputDir, creating the directory and
// its parents if absent. Creation is idempotent: an already existing
// directory, including one created concurrently by another run, is success.
func NewStore(outputDir string, quality int) (*Store, error) {
	if outputDir == "" {
		return nil, errors.New("artifact store: empty output directory")
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("artifact store: creating output directory: %w", err)
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Store{outputDir: outputDir, quality: quality}, nil
}

// Dir returns the output directory.
func (s *Store) Dir() string { return s.outputDir }

// ArtifactPath returns the deterministic path for a crop without writing it.
func (s *Store) ArtifactPath(baseName string, index int) string {
	return filepath.Join(s.outputDir, fmt.Sprintf("%s_figure_%d.jpg", baseName, index))
}

// Persist writes a cropped sub-image synchronously and returns its artifact
// record. Index is the zero-based position among all valid crops for the
// image; the caller is responsible for keeping it contiguous.
func (s *Store) Persist(baseName string, index int, img image.Image) (Artifact, error) {
	if img == nil || img.Bounds().Empty() {
		return Artifact{}, errors.New("artifact store: refusing to persist empty image")
	}
	path := s.ArtifactPath(baseName, index)
	if err := imaging.Save(img, path, imaging.JPEGQuality(s.quality)); err != nil {
		return Artifact{}, fmt.Errorf("artifact store: writing %s: %w", path, err)
	}
	b := img.Bounds()
	return Artifact{
		BaseName: baseName,
		Index:    index,
		Path:     path,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}
