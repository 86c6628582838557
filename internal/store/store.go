// Package store is the in-memory source of truth the UI reads. Every
// mutation goes through a typed entry point that enforces the entity
// invariants; a rejected mutation leaves the Store unchanged.
package store

import (
	"sync"

	"bizdash/internal/connectivity"
	"bizdash/internal/model"

	"go.uber.org/zap"
)

type Slice string

const (
	SliceSession   Slice = "session"
	SliceAppMeta   Slice = "appMeta"
	SliceProfile   Slice = "profile"
	SliceDashboard Slice = "dashboard"
	SliceInventory Slice = "inventory"
	SliceCustomers Slice = "customers"
	SliceNotices   Slice = "notices"
	SliceLoading   Slice = "loading"
)

type Store struct {
	mu        sync.RWMutex
	session   model.Session
	appMeta   model.AppMeta
	profile   model.BusinessProfile
	dashboard model.DashboardSnapshot
	inventory collection[model.InventoryItem]
	customers collection[model.Customer]
	notices   []Notice
	loading   int

	// bumped on every full replace of a collection
	inventoryGen uint64
	customersGen uint64

	subMu   sync.Mutex
	subs    map[int]func(Slice)
	nextSub int

	monitor *connectivity.Monitor
	logger  *zap.Logger
}

func New(monitor *connectivity.Monitor, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		session: model.DefaultSession(),
		appMeta: model.DefaultAppMeta(),
		subs:    map[int]func(Slice){},
		monitor: monitor,
		logger:  logger.Named("store"),
	}
}

// Subscribe registers fn to be called synchronously after every mutation of
// a slice. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Slice)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(slices ...Slice) {
	s.subMu.Lock()
	fns := make([]func(Slice), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, slice := range slices {
		for _, fn := range fns {
			fn(slice)
		}
	}
}

func (s *Store) Connected() bool {
	return s.monitor != nil && s.monitor.Up()
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// BeginLoading marks a fetch in flight until the returned func is called.
func (s *Store) BeginLoading() func() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
	s.notify(SliceLoading)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.loading--
			s.mu.Unlock()
			s.notify(SliceLoading)
		})
	}
}

func (s *Store) Session() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *Store) SetSession(session model.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	s.notify(SliceSession)
	return nil
}

func (s *Store) ClearSession() {
	s.mu.Lock()
	s.session = model.DefaultSession()
	s.mu.Unlock()
	s.notify(SliceSession)
}

func (s *Store) AppMeta() model.AppMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appMeta
}

func (s *Store) SetAppMeta(meta model.AppMeta) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.appMeta = meta
	s.mu.Unlock()
	s.notify(SliceAppMeta)
	return nil
}

// UpdateAppMeta applies fn to a copy of the current meta and stores the
// result if it is valid.
func (s *Store) UpdateAppMeta(fn func(*model.AppMeta)) (model.AppMeta, error) {
	s.mu.Lock()
	next := s.appMeta
	fn(&next)
	if err := next.Validate(); err != nil {
		current := s.appMeta
		s.mu.Unlock()
		return current, err
	}
	s.appMeta = next
	s.mu.Unlock()
	s.notify(SliceAppMeta)
	return next, nil
}

func (s *Store) BusinessProfile() model.BusinessProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Store) SetBusinessProfile(profile model.BusinessProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
	s.notify(SliceProfile)
	return nil
}

// RestoreBusinessProfile puts back a previously held profile, which may be
// the empty profile of a fresh Store.
func (s *Store) RestoreBusinessProfile(profile model.BusinessProfile) {
	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
	s.notify(SliceProfile)
}

func (s *Store) Dashboard() model.DashboardSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dashboard.Clone()
}

func (s *Store) ReplaceDashboard(snapshot model.DashboardSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.dashboard = snapshot.Clone()
	s.mu.Unlock()
	s.notify(SliceDashboard)
	return nil
}

// MergeDashboard applies a partial payload; fields it omits keep their
// prior values.
func (s *Store) MergeDashboard(patch model.DashboardPatch) (model.DashboardSnapshot, error) {
	s.mu.Lock()
	next := patch.Apply(s.dashboard)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return model.DashboardSnapshot{}, err
	}
	s.dashboard = next
	s.mu.Unlock()
	s.notify(SliceDashboard)
	return next.Clone(), nil
}

// Generation reports how many times the collection of kind was fully
// replaced. Kinds without a collection always report 0.
func (s *Store) Generation(kind model.Kind) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch kind {
	case model.KindInventory:
		return s.inventoryGen
	case model.KindCustomers:
		return s.customersGen
	default:
		return 0
	}
}
