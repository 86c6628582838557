package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

func (i InventoryItem) Validate() error {
	switch {
	case strings.TrimSpace(string(i.ID)) == "":
		return &ValidationError{Field: "id", Reason: "is required"}
	case strings.TrimSpace(i.Name) == "":
		return &ValidationError{Field: "name", Reason: "is required"}
	case i.Price.IsNegative():
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	case i.Stock < 0:
		return &ValidationError{Field: "stock", Reason: "must not be negative"}
	case i.MinStock < 0:
		return &ValidationError{Field: "min_stock", Reason: "must not be negative"}
	}
	return nil
}

func (c Customer) Validate() error {
	switch {
	case strings.TrimSpace(string(c.ID)) == "":
		return &ValidationError{Field: "id", Reason: "is required"}
	case strings.TrimSpace(c.Name) == "":
		return &ValidationError{Field: "name", Reason: "is required"}
	case c.OrderCount < 0:
		return &ValidationError{Field: "order_count", Reason: "must not be negative"}
	case c.TotalSpent.IsNegative():
		return &ValidationError{Field: "total_spent", Reason: "must not be negative"}
	}
	return nil
}

func (p BusinessProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if p.Currency != "" && len(p.Currency) != 3 {
		return &ValidationError{Field: "currency", Reason: "must be a 3-letter code"}
	}
	return nil
}

func (d DashboardSnapshot) Validate() error {
	switch {
	case d.Aggregates.TodaySales.IsNegative():
		return &ValidationError{Field: "today_sales", Reason: "must not be negative"}
	case d.Aggregates.OrderCount < 0:
		return &ValidationError{Field: "order_count", Reason: "must not be negative"}
	case d.Aggregates.CustomerCount < 0:
		return &ValidationError{Field: "customer_count", Reason: "must not be negative"}
	}
	return nil
}

// ValidateUnique reports the first duplicated id in a collection.
func ValidateUnique[T interface{ EntityID() ID }](items []T) error {
	seen := make(map[ID]struct{}, len(items))
	for _, item := range items {
		id := item.EntityID()
		if _, ok := seen[id]; ok {
			return &ValidationError{Field: "id", Reason: "duplicate id " + string(id)}
		}
		seen[id] = struct{}{}
	}
	return nil
}

func nonNegative(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return nil
}
