package parser

import (
	"regexp"
	"strings"

	"github.com/starford/folio/internal/markup"
	"github.com/starford/folio/internal/metadata"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/paragraph"
	"github.com/starford/folio/internal/sections"
)

var blankRunRe = regexp.MustCompile(`\n{4,}`)

// Option configures a Serializer.
type Option func(*Serializer)

// WithIDGenerator sets the generator used to back-fill missing ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Serializer) {
		s.ids = g
	}
}

// Serializer writes document trees as annotated Markdown.
type Serializer struct {
	ids IDGenerator
}

// NewSerializer creates a Serializer. Ids default to UUIDGenerator.
func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{ids: UUIDGenerator{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultSerializer = NewSerializer()

// Serialize writes doc with the default serializer.
func Serialize(doc *models.Document) string {
	return defaultSerializer.Serialize(doc)
}

// Serialize writes doc as text. Missing document, chapter and paragraph ids
// and chapter anchors are filled in on doc before writing.
func (s *Serializer) Serialize(doc *models.Document) string {
	s.EnsureIDs(doc)

	var b strings.Builder
	dm := doc.Metadata
	dm.Comments.TOC = nil
	dm.Comments.TOR = nil
	if c := metadata.Encode(metadata.KindDocument, dm); c != "" {
		b.WriteString(c)
		b.WriteString("\n\n")
	}
	if preface := strings.TrimSpace(doc.Preface); preface != "" {
		b.WriteString(preface)
		b.WriteString("\n\n")
	}
	if toc := doc.Metadata.Comments.TOC; toc != nil {
		b.WriteString(sections.EmitTOC(toc, sections.Entries(doc.Chapters)))
	}

	for _, ch := range doc.Chapters {
		writeChapter(&b, ch)
	}

	out := b.String()
	if tor := doc.Metadata.Comments.TOR; tor != nil {
		out = strings.TrimRight(out, "\n")
		if out != "" {
			out += "\n\n"
		}
		out += sections.EmitReferences(tor)
	}

	out = blankRunRe.ReplaceAllString(out, "\n\n")
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func writeChapter(b *strings.Builder, ch models.Chapter) {
	b.WriteString(metadata.Encode(metadata.KindChapter, ch.Metadata))
	b.WriteString("\n")
	if leading := strings.TrimSpace(ch.Leading); leading != "" {
		b.WriteString(leading)
		b.WriteString("\n\n")
	}
	b.WriteString(markup.FormatAnchorTag(ch.Anchor()))
	b.WriteString("\n")
	b.WriteString(headingLine(ch.Heading))
	b.WriteString("\n\n")
	for _, p := range ch.Paragraphs {
		if c := metadata.Encode(metadata.KindParagraph, p.Metadata); c != "" {
			b.WriteString(c)
			b.WriteString("\n")
		}
		b.WriteString(paragraph.Compose(p))
	}
}

// headingLine keeps the source line when it still says what the tree says.
func headingLine(h models.Heading) string {
	if h.Raw != "" && !strings.Contains(h.Raw, "\n") {
		if parsed, ok := markup.ParseHeading(h.Raw); ok && parsed.Level == h.Level && parsed.Text == h.Text {
			return h.Raw
		}
	}
	return markup.FormatHeading(h.Level, strings.ReplaceAll(h.Text, "\n", " "))
}

// EnsureIDs back-fills missing ids and chapter anchors on doc.
func (s *Serializer) EnsureIDs(doc *models.Document) {
	if doc.Metadata.ID == "" {
		doc.Metadata.ID = s.ids.NewID(PrefixDocument)
	}
	for i := range doc.Chapters {
		ch := &doc.Chapters[i]
		ch.ID = s.fill(ch.ID, &ch.Metadata.ID, PrefixChapter)
		if ch.Metadata.AnchorID == "" {
			ch.Metadata.AnchorID = ch.Anchor()
		}
		for j := range ch.Paragraphs {
			p := &ch.Paragraphs[j]
			p.ID = s.fill(p.ID, &p.Metadata.ID, PrefixParagraph)
			p.HasMetadata = true
		}
	}
}

// fill reconciles an entity id with its metadata id, allocating one when
// both are empty. The entity id wins when they differ.
func (s *Serializer) fill(id string, metaID *string, prefix string) string {
	if id == "" {
		id = *metaID
	}
	if id == "" {
		id = s.ids.NewID(prefix)
	}
	*metaID = id
	return id
}

// Format parses text and writes it back in canonical form with the default
// serializer.
func Format(text string) string {
	return Serialize(Parse(text))
}
