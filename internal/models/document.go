// Package models defines the domain types for Folio.
package models

// Document is the in-memory tree of one annotated Markdown file.
type Document struct {
	Metadata DocumentMetadata `json:"metadata"`
	Preface  string           `json:"preface"`
	Chapters []Chapter        `json:"chapters"`
}

// DocumentMetadata is the payload of the document metadata comment.
type DocumentMetadata struct {
	ID          string           `json:"id,omitempty"`
	Title       string           `json:"title,omitempty"`
	InfoText    string           `json:"infoText,omitempty"`
	Commands    string           `json:"commands,omitempty"`
	Comments    Comments         `json:"comments"`
	Variables   []map[string]any `json:"variables,omitempty"`
	PluginState any              `json:"pluginState,omitempty"`
	References  []Reference      `json:"references,omitempty"`
	Attachments []map[string]any `json:"attachments,omitempty"`
	Snapshots   []map[string]any `json:"snapshots,omitempty"`
	Tasks       []map[string]any `json:"tasks,omitempty"`
	Version     int64            `json:"version,omitempty"`
	UpdatedAt   string           `json:"updatedAt,omitempty"`
}

// Comments holds the comment thread and plugin bookkeeping of an entity.
// TOC and TOR are only meaningful on the document; they switch the
// generated Table of Contents and References sections on.
type Comments struct {
	Messages         []map[string]any   `json:"messages,omitempty"`
	Status           string             `json:"status,omitempty"`
	Plugin           string             `json:"plugin,omitempty"`
	PluginLastOpened string             `json:"pluginLastOpened,omitempty"`
	TOC              *TOC               `json:"toc,omitempty"`
	TOR              *TableOfReferences `json:"tor,omitempty"`
}

// TOC is the state of the generated Table of Contents.
type TOC struct {
	ID string `json:"id,omitempty"`
}

// TableOfReferences is the state of the generated References section.
type TableOfReferences struct {
	ID         string      `json:"id,omitempty"`
	References []Reference `json:"references,omitempty"`
}

// HasReferences reports whether a References section should be generated.
func (t *TableOfReferences) HasReferences() bool {
	return t != nil && len(t.References) > 0
}

// Chapter is a heading-delimited section of a document.
type Chapter struct {
	ID         string          `json:"id"`
	Metadata   ChapterMetadata `json:"metadata"`
	Heading    Heading         `json:"heading"`
	Leading    string          `json:"leading"`
	Paragraphs []Paragraph     `json:"paragraphs"`
}

// Anchor returns the chapter's link target. An explicit anchorId wins,
// otherwise it is derived from the chapter id.
func (c Chapter) Anchor() string {
	if c.Metadata.AnchorID != "" {
		return c.Metadata.AnchorID
	}
	id := c.ID
	if id == "" {
		id = c.Metadata.ID
	}
	if id == "" {
		return ""
	}
	return "chapter-" + id
}

// Heading is a chapter's ATX heading line.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Raw   string `json:"raw"`
}

// ChapterMetadata is the payload of a chapter metadata comment.
type ChapterMetadata struct {
	ID          string           `json:"id,omitempty"`
	Title       string           `json:"title,omitempty"`
	Commands    string           `json:"commands,omitempty"`
	Comments    Comments         `json:"comments"`
	Variables   []map[string]any `json:"variables,omitempty"`
	PluginState any              `json:"pluginState,omitempty"`
	References  []Reference      `json:"references,omitempty"`
	Attachments []map[string]any `json:"attachments,omitempty"`
	Snapshots   []map[string]any `json:"snapshots,omitempty"`
	Tasks       []map[string]any `json:"tasks,omitempty"`
	UpdatedAt   string           `json:"updatedAt,omitempty"`
	AnchorID    string           `json:"anchorId,omitempty"`
}

// Paragraph is one block of prose inside a chapter.
type Paragraph struct {
	ID          string            `json:"id"`
	Metadata    ParagraphMetadata `json:"metadata"`
	Leading     string            `json:"leading"`
	Text        string            `json:"text"`
	Trailing    string            `json:"trailing"`
	HasMetadata bool              `json:"hasMetadata"`
}

// DefaultParagraphType is the content kind of a paragraph without an explicit type.
const DefaultParagraphType = "markdown"

// ParagraphMetadata is the payload of a paragraph metadata comment.
type ParagraphMetadata struct {
	ID          string           `json:"id,omitempty"`
	Type        string           `json:"type,omitempty"`
	Title       string           `json:"title,omitempty"`
	Commands    string           `json:"commands,omitempty"`
	Comments    Comments         `json:"comments"`
	Variables   []map[string]any `json:"variables,omitempty"`
	PluginState any              `json:"pluginState,omitempty"`
	References  []Reference      `json:"references,omitempty"`
	Attachments []map[string]any `json:"attachments,omitempty"`
	Snapshots   []map[string]any `json:"snapshots,omitempty"`
	Tasks       []map[string]any `json:"tasks,omitempty"`
	UpdatedAt   string           `json:"updatedAt,omitempty"`
}

// ContentType returns the paragraph type, defaulting to markdown.
func (m ParagraphMetadata) ContentType() string {
	if m.Type == "" {
		return DefaultParagraphType
	}
	return m.Type
}
