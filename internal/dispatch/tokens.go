package dispatch

import (
	"sync"

	"bizdash/internal/model"
)

// tokens issues a monotonically increasing request token per kind. Only the
// latest issued token may commit its response.
type tokens struct {
	mu     sync.Mutex
	latest map[model.Kind]uint64
}

func newTokens() *tokens {
	return &tokens{latest: map[model.Kind]uint64{}}
}

func (t *tokens) issue(kind model.Kind) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest[kind]++
	return t.latest[kind]
}

func (t *tokens) isLatest(kind model.Kind, token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[kind] == token
}
