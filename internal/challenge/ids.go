package challenge

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	idOnce sync.Once
	idGen  *generator
)

// generator safely produces ULIDs concurrently from a monotonic source.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func (g *generator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), g.entropy).String()
}

// NewTransactionID returns a lexicographically sortable ULID identifying one
// SDK challenge transaction or attempt.
func NewTransactionID() string {
	idOnce.Do(func() {
		idGen = &generator{entropy: ulid.Monotonic(rand.Reader, 0)}
	})
	return idGen.next()
}
