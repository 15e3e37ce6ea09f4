package testutil

import (
	"strconv"
	"sync"
)

// StubIDGenerator hands out request ids "id-1", "id-2", ... and remembers
// them so tests can match ids against recorded requests.
type StubIDGenerator struct {
	mu     sync.Mutex
	prefix string
	issued []string
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{prefix: "id-"}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.prefix + strconv.Itoa(len(g.issued)+1)
	g.issued = append(g.issued, id)
	return id
}

// Issued returns the ids handed out so far, oldest first.
func (g *StubIDGenerator) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.issued...)
}
