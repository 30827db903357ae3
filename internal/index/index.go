package index

// DocumentIndex is the catalogue used by the document service and the
// transports. Consumers depend on it rather than on *DB.
type DocumentIndex interface {
	UpsertDocument(d DocumentRow, body string, chapters []ChapterRow) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	GetDocument(path string) (*DocumentRow, error)
	ListDocuments(limit, offset int, sort string) ([]DocumentRow, int, error)
	Chapters(path string) ([]ChapterRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ DocumentIndex = (*DB)(nil)
