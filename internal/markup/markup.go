// Package markup recognises the handful of line shapes Folio cares about in
// Markdown source: ATX headings, anchor tags, code fences and the markers of
// generated sections.
package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/util"
)

// Literal texts of generated sections.
const (
	TOCHeading         = "Table of Contents"
	ReferencesHeading  = "References"
	ReferencesAnchorID = "references"
	ReferencesMarker   = "<!-- folio:generated-references -->"
	NoChaptersLine     = "_No chapters yet._"
)

var (
	headingRe      = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?[ \t]*$`)
	anchorSuffixRe = regexp.MustCompile(`[ \t]*\{#([^}\s]+)\}$`)
	anchorTagRe    = regexp.MustCompile(`^[ \t]*<a\s+(?:id|name)\s*=\s*"([^"]+)"\s*>\s*</a>[ \t]*$`)
)

// Heading is a parsed ATX heading line.
type Heading struct {
	Level int
	// Text is entity-decoded and has any {#anchor} suffix removed.
	Text string
	// Anchor is the {#anchor} suffix, if present.
	Anchor string
}

// ParseHeading parses a single line (without its line break) as an ATX heading.
func ParseHeading(line string) (Heading, bool) {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return Heading{}, false
	}
	h := Heading{Level: len(m[1])}
	text := m[2]
	if sm := anchorSuffixRe.FindStringSubmatch(text); sm != nil {
		h.Anchor = sm[1]
		text = strings.TrimSpace(text[:len(text)-len(sm[0])])
	}
	h.Text = DecodeEntities(text)
	return h, true
}

// FormatHeading renders an ATX heading line. Levels outside 1..6 are clamped.
func FormatHeading(level int, text string) string {
	level = max(1, min(level, 6))
	if text == "" {
		return strings.Repeat("#", level)
	}
	return strings.Repeat("#", level) + " " + text
}

// WithAnchor replaces (or adds) the {#id} suffix of a heading line.
func WithAnchor(line, id string) string {
	line = strings.TrimRight(line, " \t")
	line = anchorSuffixRe.ReplaceAllString(line, "")
	return line + " {#" + id + "}"
}

// ParseAnchorTag parses a standalone <a id="..."></a> line.
func ParseAnchorTag(line string) (string, bool) {
	m := anchorTagRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FormatAnchorTag renders a standalone anchor tag.
func FormatAnchorTag(id string) string {
	return fmt.Sprintf(`<a id="%s"></a>`, id)
}

// IsFence reports whether line opens or closes a fenced code block.
func IsFence(line string) bool {
	t := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}

// IsTOCHeading reports whether h is the generated Table of Contents heading.
func IsTOCHeading(h Heading) bool {
	return strings.EqualFold(strings.TrimSpace(h.Text), TOCHeading)
}

// IsReferencesHeading reports whether h is the generated References heading.
func IsReferencesHeading(h Heading) bool {
	return strings.EqualFold(strings.TrimSpace(h.Text), ReferencesHeading)
}

// DecodeEntities resolves HTML named and numeric character references.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return string(util.ResolveEntityNames(util.ResolveNumericReferences([]byte(s))))
}

var linkTextEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)

// EscapeLinkText escapes s for use between the brackets of a Markdown link.
func EscapeLinkText(s string) string {
	return linkTextEscaper.Replace(s)
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
