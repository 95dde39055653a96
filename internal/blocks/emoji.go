package blocks

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/search"
)

func newFoldMatcher() *search.Matcher {
	return search.New(language.Und, search.IgnoreCase)
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// foldReplaceAll replaces every case-insensitive occurrence of phrase with
// repl. Matching resumes after each replacement, so a replacement containing
// the phrase does not loop.
func foldReplaceAll(text, phrase, repl string) string {
	if phrase == "" || text == "" {
		return text
	}
	m := newFoldMatcher()
	var b strings.Builder
	for {
		start, end := m.IndexString(text, phrase)
		if start < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:start])
		b.WriteString(repl)
		text = text[end:]
	}
}

// foldContains reports whether text contains phrase, case-insensitively.
func foldContains(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	start, _ := newFoldMatcher().IndexString(text, phrase)
	return start >= 0
}

// ApplyEmojiRules runs the ordered substitution table over text. Each rule
// performs a full pass; later rules see the output of earlier ones.
func ApplyEmojiRules(text string, rules []EmojiRule) string {
	for _, r := range rules {
		text = foldReplaceAll(text, r.Phrase, r.Emoji)
	}
	return text
}

// IsChartDescription reports whether a paragraph mentions any of the
// chart-indicating vocabulary terms.
func IsChartDescription(text string, terms []string) bool {
	for _, term := range terms {
		if foldContains(text, term) {
			return true
		}
	}
	return false
}
