// Package paragraph slices chapter text into paragraphs at paragraph
// metadata comments and composes them back.
package paragraph

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/starford/folio/internal/metadata"
	"github.com/starford/folio/internal/models"
)

var leadingBlankLinesRe = regexp.MustCompile(`^(?:[ \t]*\n)+`)

// Split cuts segment into paragraphs. records are the paragraph metadata
// comments inside segment, in order, with offsets relative to segment.
//
// Without records the whole segment is one untagged paragraph, or nothing if
// it is blank. Text ahead of the first record becomes an untagged paragraph
// as well.
func Split(segment string, records []metadata.Record) []models.Paragraph {
	if len(records) == 0 {
		if strings.TrimSpace(segment) == "" {
			return nil
		}
		return []models.Paragraph{cut(segment)}
	}

	var out []models.Paragraph
	if head := segment[:records[0].Start]; strings.TrimSpace(head) != "" {
		out = append(out, cut(head))
	}
	for i, rec := range records {
		end := len(segment)
		if i+1 < len(records) {
			end = records[i+1].Start
		}
		p := cut(segment[rec.End:end])
		p.HasMetadata = true
		if err := metadata.Bind(rec.Value, &p.Metadata); err != nil {
			p.Metadata = models.ParagraphMetadata{}
			if id, ok := rec.Value["id"].(string); ok {
				p.Metadata.ID = id
			}
		}
		p.ID = p.Metadata.ID
		out = append(out, p)
	}
	return out
}

// cut separates the longest leading and trailing whitespace runs from the core.
func cut(body string) models.Paragraph {
	core := strings.TrimLeftFunc(body, unicode.IsSpace)
	leading := body[:len(body)-len(core)]
	text := strings.TrimRightFunc(core, unicode.IsSpace)
	return models.Paragraph{
		Leading:  leading,
		Text:     text,
		Trailing: core[len(text):],
	}
}

// Compose renders a paragraph body. Leading blank lines are dropped and the
// result ends with at least one blank line.
func Compose(p models.Paragraph) string {
	leading := leadingBlankLinesRe.ReplaceAllString(p.Leading, "")
	trailing := strings.TrimRight(p.Trailing, " \t")
	if !strings.HasSuffix(trailing, "\n\n") {
		trailing = "\n\n"
	}
	return leading + p.Text + trailing
}
