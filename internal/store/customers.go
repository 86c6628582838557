package store

import "bizdash/internal/model"

func (s *Store) Customers() []model.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers.all()
}

func (s *Store) Customer(id model.ID) (model.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers.get(id)
}

func (s *Store) ReplaceCustomers(customers []model.Customer) error {
	if err := model.ValidateUnique(customers); err != nil {
		return err
	}
	for _, c := range customers {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.customers.replace(customers)
	s.customersGen++
	s.mu.Unlock()
	s.notify(SliceCustomers)
	return nil
}

func (s *Store) UpsertCustomer(id model.ID, patch model.CustomerPatch) (model.Customer, error) {
	s.mu.Lock()
	current, ok := s.customers.get(id)
	if !ok {
		current = model.Customer{ID: id}
	}
	if err := patch.CheckAgainst(current); err != nil {
		s.mu.Unlock()
		return model.Customer{}, err
	}
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return model.Customer{}, err
	}
	s.customers.put(next)
	s.mu.Unlock()
	s.notify(SliceCustomers)
	return next, nil
}

func (s *Store) RemoveCustomer(id model.ID) (model.Customer, int, bool) {
	s.mu.Lock()
	c, index, ok := s.customers.remove(id)
	s.mu.Unlock()
	if ok {
		s.notify(SliceCustomers)
	}
	return c, index, ok
}

// PutCustomer stores the server's copy of a customer in place of the entry
// held under replacingID. The server is authoritative, so the
// non-decreasing total rule does not apply.
func (s *Store) PutCustomer(replacingID model.ID, c model.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.customers.swap(replacingID, c)
	s.mu.Unlock()
	s.notify(SliceCustomers)
	return nil
}

func (s *Store) RestoreCustomer(c model.Customer, index int) {
	s.mu.Lock()
	s.customers.insertAt(index, c)
	s.mu.Unlock()
	s.notify(SliceCustomers)
}
