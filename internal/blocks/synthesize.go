package blocks

import (
	"fmt"
	"strings"

	"github.com/notefig/notefig/internal/region"
)

// Synthesizer turns raw extracted text plus detected regions into an ordered
// block sequence.
type Synthesizer struct {
	tables Tables
}

// NewSynthesizer creates a Synthesizer. Zero-valued tables fall back to the
// defaults.
func NewSynthesizer(tables Tables) *Synthesizer {
	if tables.ChartsHeading == "" && tables.ChartIcon == "" && len(tables.ChartTerms) == 0 {
		tables = DefaultTables()
	}
	return &Synthesizer{tables: tables}
}

// Tables returns the active configuration.
func (s *Synthesizer) Tables() Tables { return s.tables }

// SplitParagraphs segments text on blank-line boundaries, trimming each
// paragraph and discarding those empty after trimming.
func SplitParagraphs(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		p := strings.TrimSpace(strings.Join(current, "\n"))
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
		current = current[:0]
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return paragraphs
}

// Synthesize produces the block sequence for rawText and regions: one block
// per paragraph in input order, then (when regions is non-empty) a heading
// and one annotation callout per region in detection order.
func (s *Synthesizer) Synthesize(rawText string, regions []region.DetectedRegion) []ContentBlock {
	paragraphs := SplitParagraphs(rawText)
	out := make([]ContentBlock, 0, len(paragraphs)+len(regions)+1)

	for _, p := range paragraphs {
		isChart := IsChartDescription(p, s.tables.ChartTerms)
		text := ApplyEmojiRules(p, s.tables.EmojiRules)
		if isChart {
			out = append(out, Callout(text, s.tables.ChartIcon, s.tables.ChartColor))
		} else {
			out = append(out, Paragraph(text))
		}
	}

	if len(regions) > 0 {
		out = append(out, Heading(s.tables.ChartsHeading))
		for _, r := range regions {
			out = append(out, s.AnnotateRegion(r))
		}
	}
	return out
}

// AnnotateRegion builds the callout block for one detected region.
func (s *Synthesizer) AnnotateRegion(r region.DetectedRegion) ContentBlock {
	text := fmt.Sprintf("%s %s Chart: %s",
		s.tables.EmojiForType(r.Type),
		strings.ToUpper(r.Type),
		r.Description,
	)
	return Callout(text, s.tables.ChartIcon, s.tables.ChartColor)
}
