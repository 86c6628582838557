// Package persistence saves the session and app meta slices to durable
// storage and restores them at startup. Nothing here ever fails startup:
// a missing, corrupt or outdated blob falls back to the slice default.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bizdash/internal/model"
	"bizdash/internal/store"

	"go.uber.org/zap"
)

const (
	KeySession    = "session"
	KeyAppMeta    = "appMeta"
	SchemaVersion = 1
)

var errSchemaVersion = errors.New("schema version mismatch")

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Rehydrated reports which slices were restored from storage rather than
// defaulted.
type Rehydrated struct {
	Session bool
	AppMeta bool
}

type Adapter struct {
	storage     Storage
	sealer      *Sealer
	store       *store.Store
	logger      *zap.Logger
	unsubscribe func()
}

func NewAdapter(storage Storage, sealer *Sealer, st *store.Store, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		storage: storage,
		sealer:  sealer,
		store:   st,
		logger:  logger.Named("persistence"),
	}
}

// Attach persists the session and app meta slices after every mutation.
func (a *Adapter) Attach() {
	if a.unsubscribe != nil {
		return
	}
	a.unsubscribe = a.store.Subscribe(func(slice store.Slice) {
		_ = a.Persist(context.Background(), slice)
	})
}

func (a *Adapter) Detach() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Persist writes the current value of slice. Slices that are not persisted
// are ignored. Failures are logged and returned as *model.PersistenceError.
func (a *Adapter) Persist(ctx context.Context, slice store.Slice) error {
	var (
		key   string
		value any
	)
	switch slice {
	case store.SliceSession:
		key, value = KeySession, a.store.Session()
	case store.SliceAppMeta:
		key, value = KeyAppMeta, a.store.AppMeta()
	default:
		return nil
	}

	if err := a.save(ctx, key, value); err != nil {
		perr := &model.PersistenceError{Op: "write", Key: key, Err: err}
		a.logger.Warn("persist failed", zap.Error(perr))
		return perr
	}
	a.logger.Debug("slice persisted", zap.String("key", key))
	return nil
}

func (a *Adapter) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	blob, err := json.Marshal(envelope{Version: SchemaVersion, Data: data})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	sealed, err := a.sealer.Seal(blob)
	if err != nil {
		return err
	}
	return a.storage.Save(ctx, key, sealed)
}

// Rehydrate restores the persisted slices into the Store, using defaults
// for anything absent or invalid.
func (a *Adapter) Rehydrate(ctx context.Context) Rehydrated {
	var result Rehydrated

	session, err := load(ctx, a, KeySession, model.Session.Validate)
	if err != nil {
		a.absorb(KeySession, err)
		session = model.DefaultSession()
	} else {
		result.Session = true
	}
	if err := a.store.SetSession(session); err != nil {
		a.store.ClearSession()
	}

	meta, err := load(ctx, a, KeyAppMeta, model.AppMeta.Validate)
	if err != nil {
		a.absorb(KeyAppMeta, err)
		meta = model.DefaultAppMeta()
	} else {
		result.AppMeta = true
	}
	if err := a.store.SetAppMeta(meta); err != nil {
		_ = a.store.SetAppMeta(model.DefaultAppMeta())
	}

	a.logger.Info("rehydrated",
		zap.Bool("session", result.Session),
		zap.Bool("app_meta", result.AppMeta),
		zap.Bool("authenticated", session.Authenticated()),
	)
	return result
}

func (a *Adapter) absorb(key string, err error) {
	if errors.Is(err, ErrNotFound) {
		a.logger.Debug("nothing persisted", zap.String("key", key))
		return
	}
	a.logger.Warn("persisted slice discarded; using defaults",
		zap.Error(&model.PersistenceError{Op: "read", Key: key, Err: err}))
}

func load[T any](ctx context.Context, a *Adapter, key string, validate func(T) error) (T, error) {
	var zero T

	sealed, err := a.storage.Load(ctx, key)
	if err != nil {
		return zero, err
	}
	blob, err := a.sealer.Open(sealed)
	if err != nil {
		return zero, err
	}

	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return zero, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version != SchemaVersion {
		return zero, fmt.Errorf("%w: got %d", errSchemaVersion, env.Version)
	}

	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.DisallowUnknownFields()
	var value T
	if err := dec.Decode(&value); err != nil {
		return zero, fmt.Errorf("decode %s: %w", key, err)
	}
	if err := validate(value); err != nil {
		return zero, err
	}
	return value, nil
}
