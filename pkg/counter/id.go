package counter

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
)

// IDBytes is the number of entropy bytes behind each id.
const IDBytes = 8

// IDGenerator mints opaque counter ids.
type IDGenerator struct {
	mu sync.Mutex
	r  io.Reader
}

// NewIDGenerator returns a generator reading from r.
// A nil reader selects crypto/rand.
func NewIDGenerator(r io.Reader) *IDGenerator {
	if r == nil {
		r = rand.Reader
	}
	return &IDGenerator{r: r}
}

// New returns a fresh 16 character lowercase hex id.
func (g *IDGenerator) New() (string, error) {
	var b [IDBytes]byte
	g.mu.Lock()
	_, err := io.ReadFull(g.r, b[:])
	g.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
