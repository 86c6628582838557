package store

import (
	"slices"

	"bizdash/internal/model"
)

type entity interface {
	EntityID() model.ID
}

// collection keeps entities in server order with unique ids.
type collection[T entity] struct {
	items []T
}

func (c *collection[T]) all() []T {
	return slices.Clone(c.items)
}

func (c *collection[T]) index(id model.ID) int {
	return slices.IndexFunc(c.items, func(item T) bool { return item.EntityID() == id })
}

func (c *collection[T]) get(id model.ID) (T, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// put replaces the entity with the same id in place, or appends it.
func (c *collection[T]) put(item T) {
	if i := c.index(item.EntityID()); i >= 0 {
		c.items[i] = item
		return
	}
	c.items = append(c.items, item)
}

// swap replaces the entity stored under oldID with item, dropping any other
// entry that already holds item's id.
func (c *collection[T]) swap(oldID model.ID, item T) {
	i := c.index(oldID)
	if i < 0 {
		c.put(item)
		return
	}
	c.items[i] = item
	if oldID == item.EntityID() {
		return
	}
	for j := len(c.items) - 1; j >= 0; j-- {
		if j != i && c.items[j].EntityID() == item.EntityID() {
			c.items = slices.Delete(c.items, j, j+1)
		}
	}
}

func (c *collection[T]) insertAt(i int, item T) {
	if existing := c.index(item.EntityID()); existing >= 0 {
		c.items[existing] = item
		return
	}
	if i < 0 || i > len(c.items) {
		i = len(c.items)
	}
	c.items = slices.Insert(c.items, i, item)
}

func (c *collection[T]) remove(id model.ID) (T, int, bool) {
	i := c.index(id)
	if i < 0 {
		var zero T
		return zero, -1, false
	}
	item := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	return item, i, true
}

func (c *collection[T]) replace(items []T) {
	c.items = slices.Clone(items)
}
