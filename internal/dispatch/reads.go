package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"bizdash/internal/gateway"
	"bizdash/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type State int

const (
	StatePending State = iota
	StateSuccess
	StateFallback
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateFallback:
		return "fallback"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result describes how a read settled. A discarded result was superseded by
// a newer read of the same kind and never touched the Store.
type Result struct {
	Kind      model.Kind `json:"kind"`
	Token     uint64     `json:"token"`
	State     State      `json:"-"`
	Discarded bool       `json:"discarded,omitempty"`
	Reason    error      `json:"-"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := struct {
		plain
		State  string `json:"state"`
		Reason string `json:"reason,omitempty"`
	}{plain: plain(r), State: r.State.String()}
	if r.Reason != nil {
		out.Reason = r.Reason.Error()
	}
	return json.Marshal(out)
}

func (d *Dispatcher) FetchDashboard(ctx context.Context) Result {
	return d.Fetch(ctx, model.KindDashboard)
}

func (d *Dispatcher) FetchInventory(ctx context.Context) Result {
	return d.Fetch(ctx, model.KindInventory)
}

func (d *Dispatcher) FetchCustomers(ctx context.Context) Result {
	return d.Fetch(ctx, model.KindCustomers)
}

// Fetch reads one kind from the gateway. On failure the Store keeps its
// current value, demo or previously fetched.
func (d *Dispatcher) Fetch(ctx context.Context, kind model.Kind) Result {
	token := d.tokens.issue(kind)
	res := Result{Kind: kind, Token: token, State: StatePending}

	endpoint, ok := readEndpoint(kind)
	if !ok {
		res.State = StateFallback
		res.Reason = &model.ValidationError{Field: "kind", Reason: fmt.Sprintf("%q cannot be fetched", kind)}
		return res
	}

	done := d.store.BeginLoading()
	defer done()

	raw, err := d.gw.Call(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		d.observe("fetch "+string(kind), err)
		d.logger.Debug("fetch fell back", zap.String("kind", string(kind)), zap.Uint64("token", token), zap.Error(err))
		res.State = StateFallback
		res.Reason = err
		return res
	}

	d.commitMu.Lock()
	defer d.commitMu.Unlock()

	if !d.tokens.isLatest(kind, token) {
		d.logger.Debug("stale response discarded", zap.String("kind", string(kind)), zap.Uint64("token", token))
		res.State = StateFallback
		res.Discarded = true
		return res
	}

	if err := d.commit(kind, raw); err != nil {
		d.logger.Warn("rejected fetched payload", zap.String("kind", string(kind)), zap.Error(err))
		res.State = StateFallback
		res.Reason = err
		return res
	}

	res.State = StateSuccess
	return res
}

// Refresh fetches every kind concurrently. Results are in model.Kinds order
// and are always complete. The error is non-nil only when ctx ended before
// the fetches settled; the remaining fetches are cancelled with it.
func (d *Dispatcher) Refresh(ctx context.Context) ([]Result, error) {
	kinds := model.Kinds()
	results := make([]Result, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			results[i] = d.Fetch(gctx, kind)
			if reason := results[i].Reason; errors.Is(reason, context.Canceled) || errors.Is(reason, context.DeadlineExceeded) {
				return reason
			}
			return nil
		})
	}
	err := g.Wait()

	return results, err
}

func readEndpoint(kind model.Kind) (string, bool) {
	switch kind {
	case model.KindDashboard:
		return endpointDashboard, true
	case model.KindInventory:
		return endpointInventory, true
	case model.KindCustomers:
		return endpointCustomers, true
	default:
		return "", false
	}
}

func (d *Dispatcher) commit(kind model.Kind, raw json.RawMessage) error {
	switch kind {
	case model.KindDashboard:
		patch, err := gateway.Decode[model.DashboardPatch](raw)
		if err != nil {
			return err
		}
		_, err = d.store.MergeDashboard(patch)
		return err
	case model.KindInventory:
		items, err := gateway.DecodeList[model.InventoryItem](raw, "inventory")
		if err != nil {
			return err
		}
		return d.store.ReplaceInventory(items)
	case model.KindCustomers:
		customers, err := gateway.DecodeList[model.Customer](raw, "customers")
		if err != nil {
			return err
		}
		return d.store.ReplaceCustomers(customers)
	default:
		return fmt.Errorf("unsupported kind %q", kind)
	}
}
