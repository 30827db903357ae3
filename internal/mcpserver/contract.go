package mcpserver

// FormatContract describes the annotated Markdown layout that LLM
// consumers should produce when importing documents.
const FormatContract = `# Folio Document Format

A Folio document is plain Markdown. Structure and metadata travel in HTML
comments, so any Markdown renderer shows the prose and nothing else.

## Metadata comments

Each comment holds one JSON object with exactly one key:

` + "```" + `
<!-- {"folio:document":{"title":"Field Guide"}} -->
<!-- {"folio:chapter":{"id":"c1","anchorId":"birds"}} -->
<!-- {"folio:paragraph":{"id":"p1","type":"markdown"}} -->
<!-- {"folio:toc":{}} -->
<!-- {"folio:references":{"references":[...]}} -->
` + "```" + `

1. A **chapter** starts at its ` + "`folio:chapter`" + ` comment and ends at the next one.
   Its first ATX heading (` + "`## Title`" + `) is the chapter heading.
2. A **paragraph** comment annotates the block of text that follows it.
3. Text before the first chapter comment is the **preface**.
4. ` + "`folio:toc`" + ` turns on a generated Table of Contents; ` + "`folio:references`" + `
   turns on a generated References list. Never write those sections by hand:
   they are rebuilt on every save and hand-written copies are removed.
5. Unknown keys are dropped. Ids you leave out are allocated for you.

## Anchors

A chapter's link target is, in order: ` + "`anchorId`" + ` in its metadata, an
` + "`<a id=\"...\"></a>`" + ` line right before the heading, a ` + "`{#id}`" + ` suffix on the
heading, or ` + "`chapter-<id>`" + `.

## Importing

Send hand-written text through ` + "`import_document`" + `. It is parsed and stored in
canonical form; parsing never fails, so malformed comments are simply ignored.

## Example

` + "```" + `markdown
<!-- {"folio:document":{"title":"Field Guide"}} -->

A short preface.

<!-- {"folio:toc":{}} -->

<!-- {"folio:chapter":{"id":"c1"}} -->
## Birds

<!-- {"folio:paragraph":{"id":"p1"}} -->
Most birds can fly.
` + "```" + `
`
