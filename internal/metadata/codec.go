// Package metadata implements the inline metadata comment protocol: a single
// line HTML comment whose body is a one-key JSON object such as
//
//	<!-- {"folio:chapter":{"id":"ch-1","anchorId":"chapter-ch-1"}} -->
//
// Comments that do not decode to exactly one recognised key are ordinary
// content and are never reported.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Comment delimiters.
const (
	CommentOpen  = "<!--"
	CommentClose = "-->"
)

// Record is one recognised metadata comment.
type Record struct {
	Kind Kind
	// Value is the normalized payload object.
	Value map[string]any
	// Start and End are byte offsets of the whole comment, delimiters included.
	Start, End int
}

// Span is any delimited comment, metadata or not.
type Span struct {
	Start, End int
	Body       string
}

// Comments returns every terminated comment span in text. An opening
// delimiter without a closing one is skipped and scanning resumes one byte
// after it.
func Comments(text string) []Span {
	var out []Span
	pos := 0
	for pos < len(text) {
		i := strings.Index(text[pos:], CommentOpen)
		if i < 0 {
			break
		}
		open := pos + i
		bodyStart := open + len(CommentOpen)
		j := strings.Index(text[bodyStart:], CommentClose)
		if j < 0 {
			pos = open + 1
			continue
		}
		end := bodyStart + j + len(CommentClose)
		out = append(out, Span{Start: open, End: end, Body: text[bodyStart : bodyStart+j]})
		pos = end
	}
	return out
}

// Scan returns the metadata comments of text in document order.
func Scan(text string) []Record {
	var out []Record
	for _, sp := range Comments(text) {
		kind, value, ok := Decode(sp.Body)
		if !ok {
			continue
		}
		out = append(out, Record{Kind: kind, Value: value, Start: sp.Start, End: sp.End})
	}
	return out
}

// Decode decodes a comment body. It succeeds only for strict JSON that
// matches exactly one kind's envelope schema.
func Decode(body string) (Kind, map[string]any, bool) {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "{") || !strings.Contains(body, TagPrefix) {
		return "", nil, false
	}
	var payload any
	if err := decodeStrict(body, &payload); err != nil {
		return "", nil, false
	}
	obj, ok := payload.(map[string]any)
	if !ok || len(obj) != 1 {
		return "", nil, false
	}
	for _, k := range kinds {
		if err := schemas[k].Validate(obj); err != nil {
			continue
		}
		value, _ := obj[k.Tag()].(map[string]any)
		return k, Normalize(k, value), true
	}
	return "", nil, false
}

// Encode renders v as a metadata comment of the given kind. v may be a
// metadata struct or a map. Entity comments with nothing left after pruning
// yield the empty string.
func Encode(kind Kind, v any) string {
	raw, err := toMap(v)
	if err != nil {
		return ""
	}
	value := Normalize(kind, raw)
	if len(value) == 0 {
		if kind.entity() {
			return ""
		}
		value = map[string]any{}
	}
	payload, err := json.Marshal(map[string]any{kind.Tag(): value})
	if err != nil {
		return ""
	}
	return CommentOpen + " " + string(payload) + " " + CommentClose
}

// Bind decodes a normalized payload into a metadata struct.
func Bind(value map[string]any, target any) error {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return decodeStrict(string(data), target)
}

// Remove deletes the given spans from text. A span that fills a whole line
// takes its line break with it. Spans must be sorted and non-overlapping.
func Remove(text string, records []Record) string {
	if len(records) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, r := range records {
		if r.Start < pos || r.End > len(text) {
			continue
		}
		b.WriteString(text[pos:r.Start])
		pos = r.End
		if WholeLine(text, r.Start, r.End) && pos < len(text) {
			pos++
		}
	}
	b.WriteString(text[pos:])
	return b.String()
}

// WholeLine reports whether text[start:end] occupies an entire line.
func WholeLine(text string, start, end int) bool {
	atStart := start == 0 || text[start-1] == '\n'
	atEnd := end == len(text) || text[end] == '\n'
	return atStart && atEnd
}

// Filter returns the records of the given kind.
func Filter(records []Record, kind Kind) []Record {
	var out []Record
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

func toMap(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := decodeStrict(string(data), &m); err != nil {
		return nil, err
	}
	return m, nil
}

var errTrailingData = errors.New("metadata: trailing data after payload")

// decodeStrict decodes exactly one JSON value, keeping numbers as json.Number.
func decodeStrict(s string, target any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}
