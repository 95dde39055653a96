package pipeline

import (
	"encoding/base64"
	"fmt"
	"os"
)

// ExtractedImage is one manifest entry in the extraction response.
type ExtractedImage struct {
	Path     string `json:"path"`
	Base64   string `json:"base64,omitempty"`
	Filename string `json:"filename"`
}

// ExtractResponse is the wire envelope for extraction results.
type ExtractResponse struct {
	Success         bool             `json:"success"`
	ExtractedCount  int              `json:"extracted_count"`
	ExtractedImages []ExtractedImage `json:"extracted_images"`
	Error           string           `json:"error,omitempty"`
	Details         string           `json:"details,omitempty"`
}

// FailureResponse builds the failure envelope.
func FailureResponse(errMsg, details string) ExtractResponse {
	return ExtractResponse{Success: false, Error: errMsg, Details: details}
}

// Envelope converts a run result into the success envelope. When
// includeData is true each manifest entry carries the persisted JPEG as a
// data URI; reading an artifact back fails the conversion since the manifest
// must match what is on disk.
func (r *Result) Envelope(includeData bool) (ExtractResponse, error) {
	images := make([]ExtractedImage, 0, len(r.Artifacts))
	for _, a := range r.Artifacts {
		entry := ExtractedImage{Path: a.Path, Filename: a.Filename()}
		if includeData {
			data, err := os.ReadFile(a.Path) //nolint:gosec // G304: path was produced by the store
			if err != nil {
				return ExtractResponse{}, fmt.Errorf("reading artifact %s: %w", a.Path, err)
			}
			entry.Base64 = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
		}
		images = append(images, entry)
	}
	return ExtractResponse{
		Success:         true,
		ExtractedCount:  len(images),
		ExtractedImages: images,
	}, nil
}
