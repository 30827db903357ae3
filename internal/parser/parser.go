// Package parser converts annotated Markdown into a document tree and back.
//
// Parse never fails: any text yields some document. Serialize writes the
// canonical layout, and Parse of that output followed by Serialize
// reproduces it byte for byte.
package parser

import (
	"strings"

	"github.com/starford/folio/internal/markup"
	"github.com/starford/folio/internal/metadata"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/paragraph"
	"github.com/starford/folio/internal/sections"
)

// SyntheticHeadingText titles a chapter whose block has no heading line.
const SyntheticHeadingText = "Chapter"

// Parse builds a document tree from text.
func Parse(text string) *models.Document {
	text = markup.NormalizeNewlines(text)
	records := metadata.Scan(text)

	var (
		docRec, tocRec, torRec *metadata.Record
		chapterRecs            []metadata.Record
	)
	for i := range records {
		r := &records[i]
		switch r.Kind {
		case metadata.KindDocument:
			if docRec == nil {
				docRec = r
			}
		case metadata.KindTOC:
			if tocRec == nil {
				tocRec = r
			}
		case metadata.KindReferences:
			if torRec == nil {
				torRec = r
			}
		case metadata.KindChapter:
			chapterRecs = append(chapterRecs, *r)
		}
	}

	doc := &models.Document{}
	if docRec != nil {
		bindOrID(docRec.Value, &doc.Metadata, &doc.Metadata.ID)
	}
	if tocRec != nil {
		toc := &models.TOC{}
		bindOrID(tocRec.Value, toc, &toc.ID)
		doc.Metadata.Comments.TOC = toc
	}
	if torRec != nil {
		tor := &models.TableOfReferences{}
		bindOrID(torRec.Value, tor, &tor.ID)
		doc.Metadata.Comments.TOR = tor
	}
	hasRefs := doc.Metadata.Comments.TOR.HasReferences()

	prefaceEnd := len(text)
	if len(chapterRecs) > 0 {
		prefaceEnd = chapterRecs[0].Start
	}
	preface := metadata.Remove(text[:prefaceEnd], recordsBefore(records, prefaceEnd))
	preface = sections.Strip(preface, sections.StripOptions{TOC: true, References: hasRefs})
	doc.Preface = strings.TrimSpace(preface)

	for i, rec := range chapterRecs {
		end := len(text)
		if i+1 < len(chapterRecs) {
			end = chapterRecs[i+1].Start
		}
		doc.Chapters = append(doc.Chapters, parseChapter(rec, text[rec.End:end], hasRefs))
	}
	return doc
}

func parseChapter(rec metadata.Record, block string, hasRefs bool) models.Chapter {
	var ch models.Chapter
	bindOrID(rec.Value, &ch.Metadata, &ch.Metadata.ID)
	ch.ID = ch.Metadata.ID

	// Stray document, toc and references comments inside a chapter carry
	// nothing the chapter can use.
	var foreign []metadata.Record
	for _, r := range metadata.Scan(block) {
		if r.Kind != metadata.KindParagraph {
			foreign = append(foreign, r)
		}
	}
	block = metadata.Remove(block, foreign)

	parts := splitBlock(block)
	if ch.Metadata.AnchorID == "" {
		switch {
		case parts.anchorTag != "":
			ch.Metadata.AnchorID = parts.anchorTag
		case parts.heading.Anchor != "":
			ch.Metadata.AnchorID = parts.heading.Anchor
		}
	}

	region := parts.region
	if parts.found {
		ch.Heading = models.Heading{Level: parts.heading.Level, Text: parts.heading.Text, Raw: parts.raw}
		leading := sections.Strip(parts.leading, sections.StripOptions{TOC: true, References: hasRefs})
		ch.Leading = strings.TrimSpace(leading)
	} else {
		ch.Heading = models.Heading{
			Level: 2,
			Text:  SyntheticHeadingText,
			Raw:   markup.FormatHeading(2, SyntheticHeadingText),
		}
		region = parts.leading
	}

	region = sections.Strip(region, sections.StripOptions{References: hasRefs})
	ch.Paragraphs = paragraph.Split(region, metadata.Filter(metadata.Scan(region), metadata.KindParagraph))
	return ch
}

// blockParts is a chapter block cut at its heading line.
type blockParts struct {
	leading   string
	heading   markup.Heading
	raw       string
	found     bool
	anchorTag string
	region    string
}

// splitBlock finds the first heading outside code fences that is not a
// generated-section heading. Anchor tag lines ahead of the heading, and one
// directly after it, are pulled out; the first one names the anchor.
func splitBlock(block string) blockParts {
	var (
		p      blockParts
		lead   strings.Builder
		fenced bool
	)
	pos := 0
	for pos < len(block) {
		line, next := lineAt(block, pos)
		switch {
		case fenced:
			lead.WriteString(block[pos:next])
			if markup.IsFence(line) {
				fenced = false
			}
		case markup.IsFence(line):
			fenced = true
			lead.WriteString(block[pos:next])
		default:
			if id, ok := markup.ParseAnchorTag(line); ok && id != markup.ReferencesAnchorID {
				if p.anchorTag == "" {
					p.anchorTag = id
				}
				break
			}
			h, ok := markup.ParseHeading(line)
			if !ok || markup.IsTOCHeading(h) || markup.IsReferencesHeading(h) {
				lead.WriteString(block[pos:next])
				break
			}
			p.found = true
			p.heading = h
			p.raw = line
			pos = next
			if pos < len(block) {
				after, afterNext := lineAt(block, pos)
				if id, ok := markup.ParseAnchorTag(after); ok && id != markup.ReferencesAnchorID {
					if p.anchorTag == "" {
						p.anchorTag = id
					}
					pos = afterNext
				}
			}
			p.leading = lead.String()
			p.region = block[pos:]
			return p
		}
		pos = next
	}
	p.leading = lead.String()
	return p
}

// lineAt returns the line starting at pos without its break, and the offset
// of the following line.
func lineAt(s string, pos int) (string, int) {
	i := strings.IndexByte(s[pos:], '\n')
	if i < 0 {
		return s[pos:], len(s)
	}
	return s[pos : pos+i], pos + i + 1
}

func recordsBefore(records []metadata.Record, end int) []metadata.Record {
	var out []metadata.Record
	for _, r := range records {
		if r.End <= end {
			out = append(out, r)
		}
	}
	return out
}

// bindOrID decodes value into target. A payload that does not fit the
// struct keeps at least its id.
func bindOrID(value map[string]any, target any, id *string) {
	if err := metadata.Bind(value, target); err == nil {
		return
	}
	if s, ok := value["id"].(string); ok {
		*id = s
	}
}
