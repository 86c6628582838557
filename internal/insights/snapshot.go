package insights

import (
	"cmp"
	"slices"
	"time"

	"bizdash/internal/model"
	"bizdash/internal/store"

	"github.com/shopspring/decimal"
)

// Snapshot is a read-only view of the Store taken for one summary.
type Snapshot struct {
	BusinessName   string           `json:"business_name"`
	Currency       string           `json:"currency"`
	Language       string           `json:"language"`
	Online         bool             `json:"online"`
	Aggregates     model.Aggregates `json:"aggregates"`
	Trend          []model.Point    `json:"trend"`
	Alerts         model.Alerts     `json:"alerts"`
	ItemCount      int              `json:"item_count"`
	InventoryValue decimal.Decimal  `json:"inventory_value"`
	TopCustomers   []model.Customer `json:"top_customers"`
	TakenAt        time.Time        `json:"taken_at"`
}

func Take(st *store.Store, topCustomers int) Snapshot {
	profile := st.BusinessProfile()
	dashboard := st.Dashboard()
	items := st.Inventory()

	value := decimal.Zero
	for _, item := range items {
		value = value.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Stock))))
	}

	language := profile.Language
	if language == "" {
		language = st.AppMeta().Language
	}

	return Snapshot{
		BusinessName:   profile.Name,
		Currency:       profile.Currency,
		Language:       language,
		Online:         st.Connected(),
		Aggregates:     dashboard.Aggregates,
		Trend:          dashboard.TimeSeries,
		Alerts:         model.BuildAlerts(items),
		ItemCount:      len(items),
		InventoryValue: value,
		TopCustomers:   topBySpend(st.Customers(), topCustomers),
		TakenAt:        time.Now(),
	}
}

func topBySpend(customers []model.Customer, n int) []model.Customer {
	slices.SortStableFunc(customers, func(a, b model.Customer) int {
		return b.TotalSpent.Cmp(a.TotalSpent)
	})
	if n >= 0 && len(customers) > n {
		customers = customers[:n]
	}
	return customers
}

func mostRecent(customers []model.Customer) []model.Customer {
	slices.SortStableFunc(customers, func(a, b model.Customer) int {
		return cmp.Compare(lastOrderUnix(b), lastOrderUnix(a))
	})
	return customers
}

func lastOrderUnix(c model.Customer) int64 {
	if c.LastOrderAt == nil {
		return 0
	}
	return c.LastOrderAt.Unix()
}

// TrendPercent is the change from the first to the last point of the
// trend, in percent. ok is false when there is nothing to compare.
func (s Snapshot) TrendPercent() (decimal.Decimal, bool) {
	if len(s.Trend) < 2 {
		return decimal.Zero, false
	}
	first := s.Trend[0].Value
	last := s.Trend[len(s.Trend)-1].Value
	if first.IsZero() {
		return decimal.Zero, false
	}
	return last.Sub(first).Div(first).Mul(decimal.NewFromInt(100)), true
}
