// Package connectivity tracks whether the business API answered the most
// recent call. It never polls.
package connectivity

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Monitor struct {
	mu         sync.RWMutex
	up         bool
	changes    uint64
	lastChange time.Time
	logger     *zap.Logger
}

// New returns a monitor that starts down: nothing has succeeded yet.
func New(logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{logger: logger.Named("connectivity")}
}

func (m *Monitor) Up() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.up
}

// Report records the outcome of a completed gateway call.
func (m *Monitor) Report(ok bool) {
	m.mu.Lock()
	if m.up == ok && m.changes > 0 {
		m.mu.Unlock()
		return
	}
	flipped := m.up != ok
	m.up = ok
	m.changes++
	m.lastChange = time.Now()
	m.mu.Unlock()

	if flipped {
		m.logger.Info("connectivity changed", zap.Bool("up", ok))
	}
}

// Changes counts recorded transitions, including the first report.
func (m *Monitor) Changes() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.changes
}

func (m *Monitor) LastChange() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastChange
}
