// Package sections detects, strips and regenerates the derived Table of
// Contents and References sections of a document.
package sections

import (
	"regexp"
	"strings"

	"github.com/starford/folio/internal/markup"
)

// LineKind is the classification of a single source line.
type LineKind int

// Line kinds.
const (
	LineText LineKind = iota
	LineBlank
	LineFence
	LineHeading
	LineTOCHeading
	LineReferencesHeading
	LineNumbered
	LineBullet
	LineFootnote
	LineAnchor
	LineComment
	// LineGenerated is the references marker comment or the references anchor tag.
	LineGenerated
)

var (
	numberedRe = regexp.MustCompile(`^\d+[.)](?:\s|$)`)
	bulletRe   = regexp.MustCompile(`^[-*+](?:\s|$)`)
	footnoteRe = regexp.MustCompile(`^\[\^?[^\]]+\]:`)
	commentRe  = regexp.MustCompile(`^<!--.*-->$`)
)

// Classify classifies one line (without its line break).
func Classify(line string) LineKind {
	t := strings.TrimSpace(line)
	switch {
	case t == "":
		return LineBlank
	case markup.IsFence(t):
		return LineFence
	case t == markup.ReferencesMarker:
		return LineGenerated
	}
	if id, ok := markup.ParseAnchorTag(t); ok {
		if id == markup.ReferencesAnchorID {
			return LineGenerated
		}
		return LineAnchor
	}
	if h, ok := markup.ParseHeading(line); ok {
		switch {
		case markup.IsTOCHeading(h):
			return LineTOCHeading
		case markup.IsReferencesHeading(h):
			return LineReferencesHeading
		}
		return LineHeading
	}
	switch {
	case numberedRe.MatchString(t):
		return LineNumbered
	case bulletRe.MatchString(t):
		return LineBullet
	case footnoteRe.MatchString(t):
		return LineFootnote
	case commentRe.MatchString(t):
		return LineComment
	}
	return LineText
}

// IsHeading reports whether k is any kind of heading.
func (k LineKind) IsHeading() bool {
	return k == LineHeading || k == LineTOCHeading || k == LineReferencesHeading
}

// referenceLike reports whether k may appear inside a generated references list.
func (k LineKind) referenceLike() bool {
	switch k {
	case LineBlank, LineNumbered, LineBullet, LineFootnote, LineAnchor, LineComment, LineGenerated, LineReferencesHeading:
		return true
	}
	return false
}
