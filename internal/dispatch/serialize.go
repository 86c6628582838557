package dispatch

import (
	"context"
	"sync"
)

// serializer runs writes that share a key one at a time, in the order they
// were dispatched.
type serializer struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func newSerializer() *serializer {
	return &serializer{tails: map[string]chan struct{}{}}
}

// acquire waits for every earlier write on key. The returned func must be
// called once the write has settled.
func (s *serializer) acquire(ctx context.Context, key string) (func(), error) {
	s.mu.Lock()
	prev := s.tails[key]
	done := make(chan struct{})
	s.tails[key] = done
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		if s.tails[key] == done {
			delete(s.tails, key)
		}
		s.mu.Unlock()
		close(done)
	}

	if prev == nil {
		return release, nil
	}
	select {
	case <-prev:
		return release, nil
	case <-ctx.Done():
		// keep the chain intact for writes queued behind this one
		go func() {
			<-prev
			release()
		}()
		return nil, ctx.Err()
	}
}

// rollback undoes an optimistic change at most once.
type rollback struct {
	once sync.Once
	undo func()
}

func newRollback(undo func()) *rollback {
	return &rollback{undo: undo}
}

func (r *rollback) Do() {
	r.once.Do(r.undo)
}
