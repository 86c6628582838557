package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryPatch is a partial update; nil fields are left untouched.
type InventoryPatch struct {
	Name     *string          `json:"name,omitempty"`
	Category *string          `json:"category,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Stock    *int             `json:"stock,omitempty"`
	MinStock *int             `json:"min_stock,omitempty"`
}

func (p InventoryPatch) Apply(item InventoryItem) InventoryItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Stock != nil {
		item.Stock = *p.Stock
	}
	if p.MinStock != nil {
		item.MinStock = *p.MinStock
	}
	return item
}

// PatchFromItem sets every field of item.
func PatchFromItem(item InventoryItem) InventoryPatch {
	return InventoryPatch{
		Name:     &item.Name,
		Category: &item.Category,
		Price:    &item.Price,
		Stock:    &item.Stock,
		MinStock: &item.MinStock,
	}
}

// CustomerPatch is a partial update. TotalSpent may only decrease when
// Correction is set.
type CustomerPatch struct {
	Name        *string          `json:"name,omitempty"`
	Contact     *string          `json:"contact,omitempty"`
	OrderCount  *int             `json:"order_count,omitempty"`
	TotalSpent  *decimal.Decimal `json:"total_spent,omitempty"`
	LastOrderAt *time.Time       `json:"last_order_at,omitempty"`
	Correction  bool             `json:"correction,omitempty"`
}

func (p CustomerPatch) Apply(c Customer) Customer {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Contact != nil {
		c.Contact = *p.Contact
	}
	if p.OrderCount != nil {
		c.OrderCount = *p.OrderCount
	}
	if p.TotalSpent != nil {
		c.TotalSpent = *p.TotalSpent
	}
	if p.LastOrderAt != nil {
		t := *p.LastOrderAt
		c.LastOrderAt = &t
	}
	return c
}

// CheckAgainst validates the patch against the customer it modifies.
func (p CustomerPatch) CheckAgainst(current Customer) error {
	if p.TotalSpent == nil {
		return nil
	}
	if err := nonNegative("total_spent", *p.TotalSpent); err != nil {
		return err
	}
	if !p.Correction && p.TotalSpent.LessThan(current.TotalSpent) {
		return &ValidationError{Field: "total_spent", Reason: "cannot decrease without a correction"}
	}
	return nil
}

func CustomerPatchFrom(c Customer) CustomerPatch {
	return CustomerPatch{
		Name:        &c.Name,
		Contact:     &c.Contact,
		OrderCount:  &c.OrderCount,
		TotalSpent:  &c.TotalSpent,
		LastOrderAt: c.LastOrderAt,
	}
}

// DashboardPatch is a partial dashboard payload; absent fields keep their
// prior values.
type DashboardPatch struct {
	Aggregates *AggregatesPatch `json:"aggregates,omitempty"`
	TimeSeries *[]Point         `json:"time_series,omitempty"`
}

type AggregatesPatch struct {
	TodaySales    *decimal.Decimal `json:"today_sales,omitempty"`
	OrderCount    *int             `json:"order_count,omitempty"`
	CustomerCount *int             `json:"customer_count,omitempty"`
}

func (p DashboardPatch) Apply(d DashboardSnapshot) DashboardSnapshot {
	d = d.Clone()
	if a := p.Aggregates; a != nil {
		if a.TodaySales != nil {
			d.Aggregates.TodaySales = *a.TodaySales
		}
		if a.OrderCount != nil {
			d.Aggregates.OrderCount = *a.OrderCount
		}
		if a.CustomerCount != nil {
			d.Aggregates.CustomerCount = *a.CustomerCount
		}
	}
	if p.TimeSeries != nil {
		d.TimeSeries = make([]Point, len(*p.TimeSeries))
		copy(d.TimeSeries, *p.TimeSeries)
	}
	return d
}
