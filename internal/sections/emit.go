package sections

import (
	"fmt"
	"strings"

	"github.com/starford/folio/internal/markup"
	"github.com/starford/folio/internal/metadata"
	"github.com/starford/folio/internal/models"
)

// Entry is one Table of Contents line.
type Entry struct {
	Title  string
	Anchor string
}

// Entries lists the chapters of doc in tree order.
func Entries(chapters []models.Chapter) []Entry {
	out := make([]Entry, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, Entry{Title: ch.Heading.Text, Anchor: ch.Anchor()})
	}
	return out
}

// EmitTOC renders the Table of Contents block, ending with a blank line.
func EmitTOC(toc *models.TOC, entries []Entry) string {
	var b strings.Builder
	b.WriteString(metadata.Encode(metadata.KindTOC, toc))
	b.WriteString("\n")
	b.WriteString(markup.FormatHeading(2, markup.TOCHeading))
	b.WriteString("\n\n")
	if len(entries) == 0 {
		b.WriteString(markup.NoChaptersLine)
		b.WriteString("\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "- [%s](#%s)\n", markup.EscapeLinkText(e.Title), e.Anchor)
	}
	b.WriteString("\n")
	return b.String()
}

// EmitReferences renders the References block. A table without references
// keeps only its metadata comment; a nil table renders nothing.
func EmitReferences(tor *models.TableOfReferences) string {
	if tor == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(metadata.Encode(metadata.KindReferences, tor))
	b.WriteString("\n")
	if !tor.HasReferences() {
		return b.String()
	}
	b.WriteString(markup.ReferencesMarker)
	b.WriteString("\n")
	b.WriteString(markup.FormatAnchorTag(markup.ReferencesAnchorID))
	b.WriteString("\n")
	b.WriteString(markup.FormatHeading(2, markup.ReferencesHeading))
	b.WriteString("\n\n")
	for i, ref := range tor.References {
		citation := strings.ReplaceAll(FormatCitation(ref), "\n", " ")
		line := strings.TrimSpace(fmt.Sprintf("%d. %s", i+1, citation))
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
