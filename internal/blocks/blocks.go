// Package blocks synthesizes a block-structured document from extracted
// text, classifying paragraphs as prose or chart description and enriching
// them with emoji substitutions and chart annotations.
package blocks

// Kind discriminates content block variants.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindHeading   Kind = "heading"
	KindCallout   Kind = "callout"
)

// ContentBlock is one unit of synthesized structured content.
type ContentBlock struct {
	Kind  Kind   `json:"kind"`
	Text  string `json:"text"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// Paragraph builds a prose block.
func Paragraph(text string) ContentBlock {
	return ContentBlock{Kind: KindParagraph, Text: text}
}

// Heading builds a heading block.
func Heading(text string) ContentBlock {
	return ContentBlock{Kind: KindHeading, Text: text}
}

// Callout builds an annotated callout block.
func Callout(text, icon, color string) ContentBlock {
	return ContentBlock{Kind: KindCallout, Text: text, Icon: icon, Color: color}
}

// EmojiRule substitutes a phrase with replacement text. Rules are applied in
// table order; later rules see the output of earlier substitutions.
type EmojiRule struct {
	Phrase string `mapstructure:"phrase" yaml:"phrase" json:"phrase"`
	Emoji  string `mapstructure:"emoji" yaml:"emoji" json:"emoji"`
}

// Tables holds the synthesizer configuration. Passing tables explicitly
// (rather than reading process-wide globals) keeps synthesis deterministic
// under alternate vocabularies.
type Tables struct {
	// EmojiRules is the ordered phrase substitution table.
	EmojiRules []EmojiRule
	// ChartTerms classify a paragraph as chart description when any term is
	// contained case-insensitively.
	ChartTerms []string
	// TypeEmoji maps a region type (lower-case) to its annotation glyph.
	TypeEmoji map[string]string
	// DefaultTypeEmoji is used for unrecognized region types.
	DefaultTypeEmoji string
	// ChartIcon and ChartColor decorate chart-description callouts.
	ChartIcon  string
	ChartColor string
	// ChartsHeading is the heading prepended to region annotations.
	ChartsHeading string
}

// DefaultTables returns the stock configuration.
func DefaultTables() Tables {
	return Tables{
		EmojiRules: []EmojiRule{
			{Phrase: "bar chart", Emoji: "📊 chart"},
			{Phrase: "line chart", Emoji: "📈 chart"},
			{Phrase: "line graph", Emoji: "📈 graph"},
			{Phrase: "pie chart", Emoji: "🥧 chart"},
			{Phrase: "sad face", Emoji: "😢"},
			{Phrase: "happy face", Emoji: "😊"},
			{Phrase: "smiley face", Emoji: "😊"},
			{Phrase: "check mark", Emoji: "✅"},
			{Phrase: "light bulb", Emoji: "💡"},
			{Phrase: "warning sign", Emoji: "⚠️"},
			{Phrase: "right arrow", Emoji: "➡️"},
			{Phrase: "star", Emoji: "⭐"},
		},
		ChartTerms: []string{
			"chart", "graph", "diagram", "plot", "histogram",
			"bar chart", "pie chart", "line graph", "scatter plot",
		},
		TypeEmoji: map[string]string{
			"bar":     "📊",
			"line":    "📈",
			"pie":     "🥧",
			"area":    "📉",
			"scatter": "⚬",
			"flow":    "🔀",
			"diagram": "📐",
			"table":   "🗒️",
			"figure":  "🖼️",
		},
		DefaultTypeEmoji: "📊",
		ChartIcon:        "📊",
		ChartColor:       "blue_background",
		ChartsHeading:    "Charts & Diagrams",
	}
}

// EmojiForType resolves the annotation glyph for a region type. The lookup
// is case-insensitive and total: unrecognized types get the default glyph.
func (t Tables) EmojiForType(regionType string) string {
	if e, ok := t.TypeEmoji[foldKey(regionType)]; ok {
		return e
	}
	return t.DefaultTypeEmoji
}
