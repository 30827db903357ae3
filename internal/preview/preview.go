// Package preview renders a metadata-free view of an annotated document for
// read-only display. Chapter anchors survive as {#id} heading suffixes.
package preview

import (
	"strings"

	"github.com/starford/folio/internal/markup"
	"github.com/starford/folio/internal/metadata"
)

// anchorMark prefixes the placeholder line left where a chapter comment was.
const anchorMark = "\x00anchor:"

// Strip removes metadata comments from text and folds chapter anchors into
// the heading lines they belong to. Comments that are not metadata are kept.
func Strip(text string) string {
	text = markup.NormalizeNewlines(text)
	lines := strings.Split(placeholders(text), "\n")

	w := writer{heading: -1}
	for _, line := range lines {
		w.feed(line)
	}
	w.flush()
	return strings.TrimLeft(strings.Join(w.out, "\n"), "\n")
}

// placeholders drops metadata comments. Each chapter comment is replaced by
// a placeholder line carrying the chapter's anchor.
func placeholders(text string) string {
	records := metadata.Scan(text)
	if len(records) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, r := range records {
		b.WriteString(text[pos:r.Start])
		pos = r.End
		whole := metadata.WholeLine(text, r.Start, r.End)
		anchor := ""
		if r.Kind == metadata.KindChapter {
			anchor = chapterAnchor(r.Value)
		}
		switch {
		case anchor != "" && whole:
			b.WriteString(anchorMark + anchor)
		case anchor != "":
			b.WriteString("\n" + anchorMark + anchor + "\n")
		case whole && pos < len(text):
			pos++
		}
	}
	b.WriteString(text[pos:])
	return b.String()
}

func chapterAnchor(value map[string]any) string {
	if id, ok := value["anchorId"].(string); ok && id != "" {
		return id
	}
	if id, ok := value["id"].(string); ok && id != "" {
		return "chapter-" + id
	}
	return ""
}

type writer struct {
	out []string
	// pending holds anchor tag and blank lines seen since the last content.
	pending []string
	anchor  string
	// synthetic is set when anchor came from a chapter comment.
	synthetic bool
	fenced    bool
	// heading is the index in out of a heading line that can still take an
	// anchor from the line right after it, or -1.
	heading int
}

func (w *writer) feed(line string) {
	if w.fenced {
		w.emit(line)
		if markup.IsFence(line) {
			w.fenced = false
		}
		return
	}
	if id, ok := strings.CutPrefix(line, anchorMark); ok {
		if w.anchor == "" {
			w.anchor, w.synthetic = id, true
		}
		w.heading = -1
		return
	}
	if id, ok := markup.ParseAnchorTag(line); ok {
		if w.heading >= 0 && len(w.pending) == 0 {
			w.out[w.heading] = markup.WithAnchor(w.out[w.heading], id)
			w.heading = -1
			return
		}
		if w.anchor == "" {
			w.anchor, w.synthetic = id, false
		}
		w.pending = append(w.pending, line)
		return
	}
	if strings.TrimSpace(line) == "" && w.anchor != "" {
		w.pending = append(w.pending, line)
		return
	}
	if h, ok := markup.ParseHeading(line); ok {
		w.writeHeading(line, h)
		return
	}
	if markup.IsFence(line) {
		w.fenced = true
	}
	w.flush()
	w.emit(line)
}

func (w *writer) writeHeading(line string, h markup.Heading) {
	if w.anchor == "" {
		w.flush()
		w.out = append(w.out, line)
		if h.Anchor == "" {
			w.heading = len(w.out) - 1
		}
		return
	}
	for _, l := range w.pending {
		if strings.TrimSpace(l) == "" {
			w.out = append(w.out, l)
		}
	}
	w.pending = nil
	w.out = append(w.out, markup.WithAnchor(line, w.anchor))
	w.anchor, w.synthetic = "", false
	w.heading = -1
}

// flush writes buffered lines verbatim. An anchor taken from a tag line is
// given up with it; one from a chapter comment waits for the next heading.
func (w *writer) flush() {
	w.out = append(w.out, w.pending...)
	w.pending = nil
	if !w.synthetic {
		w.anchor = ""
	}
}

func (w *writer) emit(line string) {
	w.out = append(w.out, line)
	w.heading = -1
}
