package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notefig/notefig/internal/region"
)

func TestSplitParagraphs(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"two paragraphs", "one\n\ntwo", []string{"one", "two"}},
		{"multi-line paragraph", "a\nb\n\nc", []string{"a\nb", "c"}},
		{"whitespace-only separator", "one\n   \ntwo", []string{"one", "two"}},
		{"leading and trailing blanks", "\n\none\n\n", []string{"one"}},
		{"crlf", "one\r\n\r\ntwo", []string{"one", "two"}},
		{"empty input", "", nil},
		{"only whitespace", "  \n \n ", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, SplitParagraphs(c.in))
		})
	}
}

func TestSynthesizeProseAndChartParagraphs(t *testing.T) {
	s := NewSynthesizer(DefaultTables())
	raw := "Revenue grew steadily.\n\nThis bar chart shows quarterly growth."

	out := s.Synthesize(raw, nil)
	require.Len(t, out, 2)

	assert.Equal(t, Paragraph("Revenue grew steadily."), out[0])

	// "bar chart" is both a classifier keyword and a substitution target.
	assert.Equal(t, KindCallout, out[1].Kind)
	assert.Equal(t, "This 📊 chart shows quarterly growth.", out[1].Text)
	assert.Equal(t, "📊", out[1].Icon)
	assert.Equal(t, "blue_background", out[1].Color)
}

func TestSynthesizeNoRegionsNoHeading(t *testing.T) {
	s := NewSynthesizer(DefaultTables())
	out := s.Synthesize("Just prose.", nil)
	require.Len(t, out, 1)
	assert.Equal(t, KindParagraph, out[0].Kind)
	for _, b := range out {
		assert.NotEqual(t, KindHeading, b.Kind)
	}
}

func TestSynthesizeAppendsRegionAnnotations(t *testing.T) {
	s := NewSynthesizer(DefaultTables())
	regions := []region.DetectedRegion{
		{Type: "bar", Description: "Sales by quarter", HasBox: true, Box: region.NewNormBox(10, 10, 60, 50)},
		{Type: "line", Description: "Growth trend", HasBox: true, Box: region.NewNormBox(5, 55, 95, 90)},
	}

	out := s.Synthesize("Some prose.", regions)
	require.Len(t, out, 4)

	assert.Equal(t, Heading("Charts & Diagrams"), out[1])
	assert.Equal(t, "📊 BAR Chart: Sales by quarter", out[2].Text)
	assert.Equal(t, KindCallout, out[2].Kind)
	assert.Equal(t, "📈 LINE Chart: Growth trend", out[3].Text)
}

func TestSynthesizeRegionOrderPreserved(t *testing.T) {
	s := NewSynthesizer(DefaultTables())
	regions := []region.DetectedRegion{
		{Type: "pie", Description: "first"},
		{Type: "bar", Description: "second"},
		{Type: "unknown", Description: "third"},
	}
	out := s.Synthesize("", regions)
	require.Len(t, out, 4)
	assert.Equal(t, "🥧 PIE Chart: first", out[1].Text)
	assert.Equal(t, "📊 BAR Chart: second", out[2].Text)
	assert.Equal(t, "📊 UNKNOWN Chart: third", out[3].Text)
}

func TestSynthesizeAlternateTables(t *testing.T) {
	tables := Tables{
		EmojiRules:       []EmojiRule{{Phrase: "grid", Emoji: "🔲"}},
		ChartTerms:       []string{"matrix"},
		TypeEmoji:        map[string]string{"matrix": "🔲"},
		DefaultTypeEmoji: "❓",
		ChartIcon:        "🔲",
		ChartColor:       "gray_background",
		ChartsHeading:    "Matrices",
	}
	s := NewSynthesizer(tables)

	out := s.Synthesize("A grid matrix here.\n\nA plain chart mention.", []region.DetectedRegion{
		{Type: "heat", Description: "heatmap"},
	})
	require.Len(t, out, 4)
	assert.Equal(t, Callout("A 🔲 matrix here.", "🔲", "gray_background"), out[0])
	// "chart" is not in the alternate vocabulary.
	assert.Equal(t, KindParagraph, out[1].Kind)
	assert.Equal(t, Heading("Matrices"), out[2])
	assert.Equal(t, "❓ HEAT Chart: heatmap", out[3].Text)
}
