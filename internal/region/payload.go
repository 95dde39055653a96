package region

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// chartPayload mirrors the JSON emitted by descriptive vision backends:
//
//	{"charts":[{"type":..., "description":..., "coordinates":{"x1":..,...}}]}
type chartPayload struct {
	Charts []chartEntry `json:"charts"`
}

type chartEntry struct {
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Coordinates *chartCoords `json:"coordinates"`
}

// chartCoords uses pointer fields so entries with missing coordinate keys
// can be told apart from legitimate zeros and dropped individually.
type chartCoords struct {
	X1 *float64 `json:"x1"`
	Y1 *float64 `json:"y1"`
	X2 *float64 `json:"x2"`
	Y2 *float64 `json:"y2"`
}

func (c *chartCoords) complete() bool {
	return c != nil && c.X1 != nil && c.Y1 != nil && c.X2 != nil && c.Y2 != nil
}

// StripFences removes markdown code-fence wrapping from a backend response.
// Vision models frequently wrap their JSON in ```json ... ``` markers; the
// payload must parse identically with or without them.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ErrEmptyPayload is returned when a backend response contains no text.
var ErrEmptyPayload = errors.New("empty backend payload")

// ParseChartPayload parses a descriptive backend response into regions.
// Entries missing any coordinate key are dropped individually; a malformed
// document fails as a whole and is expected to be collapsed to an empty
// region list by the caller.
func ParseChartPayload(raw string) ([]DetectedRegion, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, ErrEmptyPayload
	}

	var payload chartPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, err
	}

	regions := make([]DetectedRegion, 0, len(payload.Charts))
	for _, entry := range payload.Charts {
		if !entry.Coordinates.complete() {
			continue
		}
		regions = append(regions, DetectedRegion{
			Type:        entry.Type,
			Description: entry.Description,
			Box: NewNormBox(
				*entry.Coordinates.X1,
				*entry.Coordinates.Y1,
				*entry.Coordinates.X2,
				*entry.Coordinates.Y2,
			),
			HasBox: true,
		})
	}
	return regions, nil
}

// LoadChartFile reads a saved chart payload from disk and parses it. Unlike
// the detector boundary, file loading surfaces errors: a bad path on the CLI
// should be reported, not silently ignored.
func LoadChartFile(path string) ([]DetectedRegion, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided path is expected
	if err != nil {
		return nil, fmt.Errorf("reading chart file: %w", err)
	}
	regions, err := ParseChartPayload(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing chart file %s: %w", path, err)
	}
	return regions, nil
}
