package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
)

// ImageProcessingError represents errors that can occur during image handling.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// DefaultBaseName is used when no source filename is available for an image.
const DefaultBaseName = "uploaded_image"

// BaseName derives the artifact base name from a source filename: the file
// name with its extension stripped, or DefaultBaseName when empty.
func BaseName(filename string) string {
	if filename == "" {
		return DefaultBaseName
	}
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." {
		return DefaultBaseName
	}
	return name
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path        string
	Format      string
	SizeBytes   int64
	Width       int
	Height      int
	AspectRatio float64
}

// LoadImage opens and decodes an image file, returning the image and metadata.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	if path == "" {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		err := &ImageProcessingError{Operation: "load", Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
		return nil, ImageMetadata{}, err
	}

	f, err := os.Open(path) //nolint:gosec // G304: Reading user-provided image file path is expected
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: err}
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing image file: %v\n", err)
		}
	}()

	fi, statErr := f.Stat()
	if statErr != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: statErr}
	}

	img, format, decErr := image.Decode(f)
	if decErr != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "decode", Err: decErr}
	}

	b := img.Bounds()
	meta := ImageMetadata{
		Path:        path,
		Format:      format,
		SizeBytes:   fi.Size(),
		Width:       b.Dx(),
		Height:      b.Dy(),
		AspectRatio: float64(b.Dx()) / float64(b.Dy()),
	}
	return img, meta, nil
}

// DecodeBase64Image decodes a base64 payload (optionally a data URI) into an
// image. A "data:image/...;base64," prefix is stripped before decoding.
func DecodeBase64Image(data string) (image.Image, string, error) {
	if strings.TrimSpace(data) == "" {
		return nil, "", &ImageProcessingError{Operation: "decode", Err: errors.New("empty image payload")}
	}
	if strings.HasPrefix(data, "data:") {
		if idx := strings.Index(data, ";base64,"); idx >= 0 {
			data = data[idx+len(";base64,"):]
		}
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, "", &ImageProcessingError{Operation: "decode", Err: fmt.Errorf("invalid base64: %w", err)}
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", &ImageProcessingError{Operation: "decode", Err: err}
	}
	return img, format, nil
}

// ValidatePixelBudget rejects images whose pixel count exceeds maxPixels.
// A non-positive maxPixels disables the check.
func ValidatePixelBudget(img image.Image, maxPixels int64) error {
	if img == nil {
		return &ImageProcessingError{Operation: "validate", Err: errors.New("input image is nil")}
	}
	if maxPixels <= 0 {
		return nil
	}
	b := img.Bounds()
	px := int64(b.Dx()) * int64(b.Dy())
	if px > maxPixels {
		return &ImageProcessingError{
			Operation: "validate",
			Err:       fmt.Errorf("image too large: %d pixels exceeds limit of %d", px, maxPixels),
		}
	}
	return nil
}
