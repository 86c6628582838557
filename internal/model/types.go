// Package model holds the entities the data layer mediates between the
// business API and the UI, along with their invariants.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindDashboard Kind = "dashboard"
	KindInventory Kind = "inventory"
	KindCustomers Kind = "customers"
	KindProfile   Kind = "profile"
)

// Kinds lists the kinds that can be fetched.
func Kinds() []Kind {
	return []Kind{KindDashboard, KindInventory, KindCustomers}
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

type Session struct {
	Token        string `json:"token,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	BusinessName string `json:"business_name,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

type AppMeta struct {
	Initialized bool   `json:"initialized"`
	Language    string `json:"language"`
	Theme       Theme  `json:"theme"`
	Locale      string `json:"locale"`
	Timezone    string `json:"timezone"`
}

type BusinessProfile struct {
	Name      string `json:"name"`
	OwnerName string `json:"owner_name"`
	TaxID     string `json:"tax_id,omitempty"`
	Currency  string `json:"currency"`
	Language  string `json:"language,omitempty"`
}

type InventoryItem struct {
	ID       ID              `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	MinStock int             `json:"min_stock"`
}

func (i InventoryItem) EntityID() ID { return i.ID }

type Customer struct {
	ID          ID              `json:"id"`
	Name        string          `json:"name"`
	Contact     string          `json:"contact"`
	OrderCount  int             `json:"order_count"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	LastOrderAt *time.Time      `json:"last_order_at,omitempty"`
}

func (c Customer) EntityID() ID { return c.ID }

type Aggregates struct {
	TodaySales    decimal.Decimal `json:"today_sales"`
	OrderCount    int             `json:"order_count"`
	CustomerCount int             `json:"customer_count"`
}

type Point struct {
	Period string          `json:"period"`
	Value  decimal.Decimal `json:"value"`
}

type DashboardSnapshot struct {
	Aggregates Aggregates `json:"aggregates"`
	TimeSeries []Point    `json:"time_series"`
}

// Clone returns a copy that shares no slices with d.
func (d DashboardSnapshot) Clone() DashboardSnapshot {
	out := d
	if d.TimeSeries != nil {
		out.TimeSeries = make([]Point, len(d.TimeSeries))
		copy(out.TimeSeries, d.TimeSeries)
	}
	return out
}
