package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bizdash/internal/gateway"
	"bizdash/internal/model"
	"bizdash/internal/store"

	"go.uber.org/zap"
)

// gate rejects a write while connectivity is down. Nothing in the Store is
// touched on rejection.
func (d *Dispatcher) gate(op string) error {
	if d.online() {
		return nil
	}
	d.store.PushNotice(store.Notice{
		Level:   store.LevelWarning,
		Op:      op,
		Message: Describe(model.ErrFeatureUnavailableOffline),
	})
	return fmt.Errorf("%s: %w", op, model.ErrFeatureUnavailableOffline)
}

// begin gates op, then waits for earlier writes on the same entity. The
// gate runs again after the wait since connectivity may have dropped.
func (d *Dispatcher) begin(ctx context.Context, op string, kind model.Kind, id model.ID) (func(), error) {
	if err := d.gate(op); err != nil {
		return nil, err
	}
	release, err := d.writes.acquire(ctx, string(kind)+"/"+string(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := d.gate(op); err != nil {
		release()
		return nil, err
	}
	return release, nil
}

func (d *Dispatcher) rejected(op string, err error) error {
	d.store.PushNotice(store.Notice{Level: store.LevelWarning, Op: op, Message: Describe(err)})
	return fmt.Errorf("%s: %w", op, err)
}

// failed is the rollback path: undo, tell the user, return the reason.
func (d *Dispatcher) failed(op string, undo *rollback, err error) error {
	undo.Do()
	d.observe(op, err)
	d.logger.Warn("write rolled back", zap.String("op", op), zap.Error(err))
	d.store.PushNotice(store.Notice{Level: store.LevelError, Op: op, Message: Describe(err)})
	return fmt.Errorf("%s: %w", op, err)
}

func isNull(raw []byte) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func entityEndpoint(base string, id model.ID) string {
	return base + "/" + string(id)
}

// apply runs an optimistic change and returns the replace generation of
// kind it was made against. Fetch commits hold commitMu too, so no replace
// can land between the change and the capture.
func (d *Dispatcher) apply(kind model.Kind, change func() error) (uint64, error) {
	d.commitMu.Lock()
	defer d.commitMu.Unlock()
	if err := change(); err != nil {
		return 0, err
	}
	return d.store.Generation(kind), nil
}

// settle runs fn under commitMu. replaced reports whether a fetch has
// replaced the collection of kind since gen; a replaced collection already
// holds the server's view and must not be reverted to local state.
func (d *Dispatcher) settle(kind model.Kind, gen uint64, fn func(replaced bool)) {
	d.commitMu.Lock()
	defer d.commitMu.Unlock()
	fn(d.store.Generation(kind) != gen)
}

func (d *Dispatcher) CreateInventoryItem(ctx context.Context, item model.InventoryItem) (model.InventoryItem, error) {
	const op = "create inventory item"
	if err := d.gate(op); err != nil {
		return model.InventoryItem{}, err
	}

	tempID := model.NewTempID()
	item.ID = tempID
	if err := item.Validate(); err != nil {
		return model.InventoryItem{}, d.rejected(op, err)
	}
	body := model.PatchFromItem(item)
	_, err := d.apply(model.KindInventory, func() error {
		_, err := d.store.UpsertInventory(tempID, body)
		return err
	})
	if err != nil {
		return model.InventoryItem{}, d.rejected(op, err)
	}
	// a replace drops the temporary id too, so removal is always safe
	undo := newRollback(func() { d.store.RemoveInventory(tempID) })

	raw, err := d.gw.Call(ctx, http.MethodPost, endpointInventory, body)
	if err != nil {
		return model.InventoryItem{}, d.failed(op, undo, err)
	}
	created, err := gateway.Decode[model.InventoryItem](raw)
	if err == nil && created.ID == "" {
		err = &model.ValidationError{Field: "id", Reason: "server returned no id"}
	}
	if err == nil {
		err = d.store.PutInventoryItem(tempID, created)
	}
	if err != nil {
		return model.InventoryItem{}, d.failed(op, undo, err)
	}

	d.logger.Info("inventory item created", zap.String("id", created.ID.String()))
	return created, nil
}

func (d *Dispatcher) UpdateInventoryItem(ctx context.Context, id model.ID, patch model.InventoryPatch) (model.InventoryItem, error) {
	const op = "update inventory item"
	release, err := d.begin(ctx, op, model.KindInventory, id)
	if err != nil {
		return model.InventoryItem{}, err
	}
	defer release()

	var prev, optimistic model.InventoryItem
	gen, err := d.apply(model.KindInventory, func() error {
		var ok bool
		if prev, ok = d.store.InventoryItem(id); !ok {
			return fmt.Errorf("%w: inventory item %s", model.ErrNotFound, id)
		}
		var err error
		optimistic, err = d.store.UpsertInventory(id, patch)
		return err
	})
	if err != nil {
		return model.InventoryItem{}, d.rejected(op, err)
	}
	undo := newRollback(func() {
		d.settle(model.KindInventory, gen, func(replaced bool) {
			if !replaced {
				d.store.RestoreInventoryItem(prev, d.indexOfItem(id))
			}
		})
	})

	raw, err := d.gw.Call(ctx, http.MethodPut, entityEndpoint(endpointInventory, id), patch)
	if err != nil {
		return model.InventoryItem{}, d.failed(op, undo, err)
	}
	if isNull(raw) {
		result := optimistic
		d.settle(model.KindInventory, gen, func(replaced bool) {
			if !replaced {
				return
			}
			// the patch was accepted; carry it onto the fetched copy
			if _, ok := d.store.InventoryItem(id); ok {
				if next, err := d.store.UpsertInventory(id, patch); err == nil {
					result = next
				}
			}
		})
		return result, nil
	}
	updated, err := gateway.Decode[model.InventoryItem](raw)
	if err == nil {
		if updated.ID == "" {
			updated.ID = id
		}
		err = d.store.PutInventoryItem(id, updated)
	}
	if err != nil {
		return model.InventoryItem{}, d.failed(op, undo, err)
	}
	return updated, nil
}

func (d *Dispatcher) DeleteInventoryItem(ctx context.Context, id model.ID) error {
	const op = "delete inventory item"
	release, err := d.begin(ctx, op, model.KindInventory, id)
	if err != nil {
		return err
	}
	defer release()

	var (
		prev  model.InventoryItem
		index int
	)
	gen, err := d.apply(model.KindInventory, func() error {
		var ok bool
		if prev, index, ok = d.store.RemoveInventory(id); !ok {
			return fmt.Errorf("%w: inventory item %s", model.ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return d.rejected(op, err)
	}
	undo := newRollback(func() {
		d.settle(model.KindInventory, gen, func(replaced bool) {
			if !replaced {
				d.store.RestoreInventoryItem(prev, index)
			}
		})
	})

	if _, err := d.gw.Call(ctx, http.MethodDelete, entityEndpoint(endpointInventory, id), nil); err != nil {
		return d.failed(op, undo, err)
	}
	d.settle(model.KindInventory, gen, func(replaced bool) {
		if replaced {
			// the fetch may have been served before the delete
			d.store.RemoveInventory(id)
		}
	})
	return nil
}

func (d *Dispatcher) CreateCustomer(ctx context.Context, c model.Customer) (model.Customer, error) {
	const op = "create customer"
	if err := d.gate(op); err != nil {
		return model.Customer{}, err
	}

	tempID := model.NewTempID()
	c.ID = tempID
	if err := c.Validate(); err != nil {
		return model.Customer{}, d.rejected(op, err)
	}
	body := model.CustomerPatchFrom(c)
	_, err := d.apply(model.KindCustomers, func() error {
		_, err := d.store.UpsertCustomer(tempID, body)
		return err
	})
	if err != nil {
		return model.Customer{}, d.rejected(op, err)
	}
	undo := newRollback(func() { d.store.RemoveCustomer(tempID) })

	raw, err := d.gw.Call(ctx, http.MethodPost, endpointCustomers, body)
	if err != nil {
		return model.Customer{}, d.failed(op, undo, err)
	}
	created, err := gateway.Decode[model.Customer](raw)
	if err == nil && created.ID == "" {
		err = &model.ValidationError{Field: "id", Reason: "server returned no id"}
	}
	if err == nil {
		err = d.store.PutCustomer(tempID, created)
	}
	if err != nil {
		return model.Customer{}, d.failed(op, undo, err)
	}

	d.logger.Info("customer created", zap.String("id", created.ID.String()))
	return created, nil
}

func (d *Dispatcher) UpdateCustomer(ctx context.Context, id model.ID, patch model.CustomerPatch) (model.Customer, error) {
	const op = "update customer"
	release, err := d.begin(ctx, op, model.KindCustomers, id)
	if err != nil {
		return model.Customer{}, err
	}
	defer release()

	var prev, optimistic model.Customer
	gen, err := d.apply(model.KindCustomers, func() error {
		var ok bool
		if prev, ok = d.store.Customer(id); !ok {
			return fmt.Errorf("%w: customer %s", model.ErrNotFound, id)
		}
		var err error
		optimistic, err = d.store.UpsertCustomer(id, patch)
		return err
	})
	if err != nil {
		return model.Customer{}, d.rejected(op, err)
	}
	undo := newRollback(func() {
		d.settle(model.KindCustomers, gen, func(replaced bool) {
			if !replaced {
				d.store.RestoreCustomer(prev, d.indexOfCustomer(id))
			}
		})
	})

	raw, err := d.gw.Call(ctx, http.MethodPut, entityEndpoint(endpointCustomers, id), patch)
	if err != nil {
		return model.Customer{}, d.failed(op, undo, err)
	}
	if isNull(raw) {
		result := optimistic
		d.settle(model.KindCustomers, gen, func(replaced bool) {
			if !replaced {
				return
			}
			if _, ok := d.store.Customer(id); ok {
				if next, err := d.store.UpsertCustomer(id, patch); err == nil {
					result = next
				}
			}
		})
		return result, nil
	}
	updated, err := gateway.Decode[model.Customer](raw)
	if err == nil {
		if updated.ID == "" {
			updated.ID = id
		}
		err = d.store.PutCustomer(id, updated)
	}
	if err != nil {
		return model.Customer{}, d.failed(op, undo, err)
	}
	return updated, nil
}

func (d *Dispatcher) DeleteCustomer(ctx context.Context, id model.ID) error {
	const op = "delete customer"
	release, err := d.begin(ctx, op, model.KindCustomers, id)
	if err != nil {
		return err
	}
	defer release()

	var (
		prev  model.Customer
		index int
	)
	gen, err := d.apply(model.KindCustomers, func() error {
		var ok bool
		if prev, index, ok = d.store.RemoveCustomer(id); !ok {
			return fmt.Errorf("%w: customer %s", model.ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return d.rejected(op, err)
	}
	undo := newRollback(func() {
		d.settle(model.KindCustomers, gen, func(replaced bool) {
			if !replaced {
				d.store.RestoreCustomer(prev, index)
			}
		})
	})

	if _, err := d.gw.Call(ctx, http.MethodDelete, entityEndpoint(endpointCustomers, id), nil); err != nil {
		return d.failed(op, undo, err)
	}
	d.settle(model.KindCustomers, gen, func(replaced bool) {
		if replaced {
			d.store.RemoveCustomer(id)
		}
	})
	return nil
}

// SaveBusinessProfile replaces the profile. The server's copy wins when it
// returns one.
func (d *Dispatcher) SaveBusinessProfile(ctx context.Context, profile model.BusinessProfile) (model.BusinessProfile, error) {
	const op = "save business profile"
	release, err := d.begin(ctx, op, model.KindProfile, "")
	if err != nil {
		return model.BusinessProfile{}, err
	}
	defer release()

	if err := profile.Validate(); err != nil {
		return model.BusinessProfile{}, d.rejected(op, err)
	}
	prev := d.store.BusinessProfile()
	if err := d.store.SetBusinessProfile(profile); err != nil {
		return model.BusinessProfile{}, d.rejected(op, err)
	}
	undo := newRollback(func() { d.store.RestoreBusinessProfile(prev) })

	raw, err := d.gw.Call(ctx, http.MethodPost, endpointProfile, profile)
	if err != nil {
		return model.BusinessProfile{}, d.failed(op, undo, err)
	}
	if isNull(raw) {
		return profile, nil
	}
	saved, err := gateway.Decode[model.BusinessProfile](raw)
	if err == nil {
		err = d.store.SetBusinessProfile(saved)
	}
	if err != nil {
		return model.BusinessProfile{}, d.failed(op, undo, err)
	}
	return saved, nil
}

func (d *Dispatcher) indexOfItem(id model.ID) int {
	for i, item := range d.store.Inventory() {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (d *Dispatcher) indexOfCustomer(id model.ID) int {
	for i, c := range d.store.Customers() {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Describe turns a dispatcher or gateway error into a short message for
// the user.
func Describe(err error) string {
	var (
		verr *model.ValidationError
		serr *model.ServerError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, model.ErrFeatureUnavailableOffline):
		return "You are offline. This action needs a connection to the server."
	case errors.Is(err, model.ErrNetworkUnavailable):
		return "The server could not be reached. Your change was not saved."
	case errors.Is(err, model.ErrNotFound):
		return "That record no longer exists."
	case errors.As(err, &verr):
		if verr.Field == "" {
			return "Invalid input: " + verr.Reason
		}
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Reason)
	case errors.As(err, &serr):
		switch serr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "Access denied. Please sign in again."
		case http.StatusTooManyRequests:
			return "Too many requests. Try again later."
		}
		return fmt.Sprintf("The server rejected the request (status %d).", serr.Status)
	default:
		return err.Error()
	}
}
