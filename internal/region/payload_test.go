package region

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "charts": [
    {
      "type": "bar",
      "description": "Sales by quarter",
      "coordinates": {"x1": 10, "y1": 10, "x2": 60, "y2": 50}
    },
    {
      "type": "line",
      "description": "Growth trend",
      "coordinates": {"x1": 5, "y1": 55, "x2": 95, "y2": 90}
    }
  ]
}`

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"charts":[]}`, `{"charts":[]}`},
		{"json fence", "```json\n{\"charts\":[]}\n```", `{"charts":[]}`},
		{"bare fence", "```\n{\"charts\":[]}\n```", `{"charts":[]}`},
		{"surrounding whitespace", "  \n{\"charts\":[]}\n  ", `{"charts":[]}`},
		{"fence without newlines", "```json{\"charts\":[]}```", `{"charts":[]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, StripFences(c.in))
		})
	}
}

func TestParseChartPayload(t *testing.T) {
	regions, err := ParseChartPayload(samplePayload)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	assert.Equal(t, "bar", regions[0].Type)
	assert.Equal(t, "Sales by quarter", regions[0].Description)
	assert.True(t, regions[0].HasBox)
	assert.InDelta(t, 10.0, regions[0].Box.X1, 1e-9)
	assert.InDelta(t, 60.0, regions[0].Box.X2, 1e-9)

	assert.Equal(t, "line", regions[1].Type)
}

func TestParseChartPayloadFenced(t *testing.T) {
	fenced := "```json\n" + samplePayload + "\n```"
	plain, err := ParseChartPayload(samplePayload)
	require.NoError(t, err)
	wrapped, err := ParseChartPayload(fenced)
	require.NoError(t, err)
	assert.Equal(t, plain, wrapped)
}

func TestParseChartPayloadInvertedCorners(t *testing.T) {
	regions, err := ParseChartPayload(`{"charts":[{"type":"pie","description":"d",
		"coordinates":{"x1":60,"y1":50,"x2":10,"y2":10}}]}`)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.InDelta(t, 10.0, regions[0].Box.X1, 1e-9)
	assert.InDelta(t, 60.0, regions[0].Box.X2, 1e-9)
	assert.InDelta(t, 10.0, regions[0].Box.Y1, 1e-9)
	assert.InDelta(t, 50.0, regions[0].Box.Y2, 1e-9)
}

func TestParseChartPayloadDropsIncompleteEntries(t *testing.T) {
	payload := `{"charts":[
		{"type":"bar","description":"ok","coordinates":{"x1":1,"y1":2,"x2":3,"y2":4}},
		{"type":"line","description":"no coords"},
		{"type":"pie","description":"partial","coordinates":{"x1":1,"y1":2,"x2":3}}
	]}`
	regions, err := ParseChartPayload(payload)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "bar", regions[0].Type)
}

func TestParseChartPayloadErrors(t *testing.T) {
	_, err := ParseChartPayload("")
	require.ErrorIs(t, err, ErrEmptyPayload)

	_, err = ParseChartPayload("```json\n\n```")
	require.ErrorIs(t, err, ErrEmptyPayload)

	_, err = ParseChartPayload("I could not find any charts in this image.")
	require.Error(t, err)

	regions, err := ParseChartPayload(`{"charts":[]}`)
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestLoadChartFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "charts.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePayload), 0o600))

	regions, err := LoadChartFile(path)
	require.NoError(t, err)
	assert.Len(t, regions, 2)

	_, err = LoadChartFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
