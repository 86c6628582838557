package store

import (
	"slices"
	"time"
)

const maxNotices = 20

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a non-fatal, user-visible message raised by the data layer.
type Notice struct {
	Level   Level     `json:"level"`
	Op      string    `json:"op"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func (s *Store) PushNotice(n Notice) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	s.mu.Lock()
	s.notices = append(s.notices, n)
	if len(s.notices) > maxNotices {
		s.notices = slices.Clone(s.notices[len(s.notices)-maxNotices:])
	}
	s.mu.Unlock()
	s.notify(SliceNotices)
}

func (s *Store) Notices() []Notice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notices)
}

func (s *Store) DismissNotices() {
	s.mu.Lock()
	s.notices = nil
	s.mu.Unlock()
	s.notify(SliceNotices)
}
