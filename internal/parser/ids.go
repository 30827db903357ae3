package parser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ID prefixes per entity kind.
const (
	PrefixDocument  = "doc"
	PrefixChapter   = "ch"
	PrefixParagraph = "p"
)

// IDGenerator allocates identifiers for entities that have none.
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDGenerator returns ids of the form "<prefix>-<12 hex digits>" taken from
// a random UUID.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + hex[:12]
}

// SequenceGenerator hands out "<prefix>-1", "<prefix>-2", ... with one
// counter shared by all prefixes. Safe for concurrent use.
type SequenceGenerator struct {
	mu sync.Mutex
	n  int
}

// NewID implements IDGenerator.
func (g *SequenceGenerator) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", prefix, g.n)
}
