// Package dispatch turns UI intents into Store mutations and gateway calls.
// Reads fall back silently to whatever the Store holds; writes are applied
// optimistically and rolled back when the gateway fails.
package dispatch

import (
	"context"
	"encoding/json"
	"sync"

	"bizdash/internal/connectivity"
	"bizdash/internal/gateway"
	"bizdash/internal/model"
	"bizdash/internal/store"

	"go.uber.org/zap"
)

const (
	endpointDashboard = "/dashboard"
	endpointInventory = "/inventory"
	endpointCustomers = "/customers"
	endpointProfile   = "/business/profile"
)

// caller is the part of the gateway the dispatcher needs.
type caller interface {
	Call(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error)
}

type Dispatcher struct {
	gw      caller
	store   *store.Store
	monitor *connectivity.Monitor
	logger  *zap.Logger

	tokens *tokens
	// commitMu makes the token check and the Store write of a read atomic,
	// and orders optimistic writes and their rollbacks against those commits.
	commitMu sync.Mutex
	writes   *serializer
}

func New(gw *gateway.Gateway, st *store.Store, monitor *connectivity.Monitor, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	gw.SetTokenSource(func() string {
		return st.Session().Token
	})
	return &Dispatcher{
		gw:      gw,
		store:   st,
		monitor: monitor,
		logger:  logger.Named("dispatch"),
		tokens:  newTokens(),
		writes:  newSerializer(),
	}
}

func (d *Dispatcher) online() bool {
	return d.monitor != nil && d.monitor.Up()
}

// observe inspects every gateway failure for an expired session.
func (d *Dispatcher) observe(op string, err error) {
	switch model.StatusOf(err) {
	case 401, 403:
		if !d.store.Session().Authenticated() {
			return
		}
		d.logger.Warn("session rejected by server; signing out", zap.String("op", op), zap.Error(err))
		d.store.ClearSession()
		d.store.PushNotice(store.Notice{
			Level:   store.LevelWarning,
			Op:      op,
			Message: "Your session has expired. Please sign in again.",
		})
	}
}
