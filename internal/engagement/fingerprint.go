package engagement

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
)

// FingerprintFunc reduces an input set to a stable comparison token.
type FingerprintFunc func(input any) (string, error)

// DefaultFingerprint hashes the canonical JSON encoding of the input.
// encoding/json sorts map keys, so identical record sets produce
// identical tokens regardless of iteration order.
func DefaultFingerprint(input any) (string, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// Guard is the memoization gate in front of recomputation: it remembers
// the fingerprint of the last seen input per key and reports whether a new
// input differs. Safe for concurrent use.
type Guard struct {
	mu   sync.Mutex
	fn   FingerprintFunc
	last map[string]string
}

// NewGuard builds a guard around the supplied fingerprint function,
// defaulting to DefaultFingerprint when nil.
func NewGuard(fn FingerprintFunc) *Guard {
	if fn == nil {
		fn = DefaultFingerprint
	}
	return &Guard{fn: fn, last: make(map[string]string)}
}

// Changed reports whether the input differs from the last one recorded
// under key, updating the stored fingerprint when it does. Fingerprint
// failures count as changed so recomputation is never wrongly skipped.
func (g *Guard) Changed(key string, input any) bool {
	token, err := g.fn(input)
	if err != nil {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if previous, ok := g.last[key]; ok && previous == token {
		return false
	}

	g.last[key] = token
	return true
}

// Reset forgets the stored fingerprint for key, forcing the next Changed
// call to report true.
func (g *Guard) Reset(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.last, key)
}
