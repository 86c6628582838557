package store

import "bizdash/internal/model"

func (s *Store) Inventory() []model.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inventory.all()
}

func (s *Store) InventoryItem(id model.ID) (model.InventoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inventory.get(id)
}

func (s *Store) ReplaceInventory(items []model.InventoryItem) error {
	if err := model.ValidateUnique(items); err != nil {
		return err
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.inventory.replace(items)
	s.inventoryGen++
	s.mu.Unlock()
	s.notify(SliceInventory)
	return nil
}

// UpsertInventory patches the item with the given id, creating it when it
// does not exist yet.
func (s *Store) UpsertInventory(id model.ID, patch model.InventoryPatch) (model.InventoryItem, error) {
	s.mu.Lock()
	current, ok := s.inventory.get(id)
	if !ok {
		current = model.InventoryItem{ID: id}
	}
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return model.InventoryItem{}, err
	}
	s.inventory.put(next)
	s.mu.Unlock()
	s.notify(SliceInventory)
	return next, nil
}

func (s *Store) RemoveInventory(id model.ID) (model.InventoryItem, int, bool) {
	s.mu.Lock()
	item, index, ok := s.inventory.remove(id)
	s.mu.Unlock()
	if ok {
		s.notify(SliceInventory)
	}
	return item, index, ok
}

// PutInventoryItem stores the authoritative copy of an item in place of the
// entry held under replacingID.
func (s *Store) PutInventoryItem(replacingID model.ID, item model.InventoryItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.inventory.swap(replacingID, item)
	s.mu.Unlock()
	s.notify(SliceInventory)
	return nil
}

// RestoreInventoryItem puts a previously removed or overwritten item back
// at its former position.
func (s *Store) RestoreInventoryItem(item model.InventoryItem, index int) {
	s.mu.Lock()
	s.inventory.insertAt(index, item)
	s.mu.Unlock()
	s.notify(SliceInventory)
}
