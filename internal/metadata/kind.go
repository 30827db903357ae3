package metadata

// Kind identifies which entity a metadata comment belongs to.
type Kind string

// Entity kinds, in the order payloads are matched against their schemas.
const (
	KindDocument   Kind = "document"
	KindChapter    Kind = "chapter"
	KindParagraph  Kind = "paragraph"
	KindTOC        Kind = "toc"
	KindReferences Kind = "references"
)

// TagPrefix namespaces payload keys so unrelated JSON comments never match.
const TagPrefix = "folio:"

var kinds = []Kind{KindDocument, KindChapter, KindParagraph, KindTOC, KindReferences}

// Kinds returns every recognised kind in matching order.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// Tag returns the payload key for k.
func (k Kind) Tag() string {
	return TagPrefix + string(k)
}

// entity reports whether k is a document, chapter or paragraph. Entity
// comments are skipped when nothing survives pruning; TOC and References
// comments are always written because their presence is the signal.
func (k Kind) entity() bool {
	return k == KindDocument || k == KindChapter || k == KindParagraph
}
