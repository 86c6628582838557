package insights

import (
	"fmt"
	"strings"

	"bizdash/internal/model"

	"github.com/shopspring/decimal"
)

// ruleHighlights describes the snapshot without a model. The output is
// deterministic for a given snapshot.
func ruleHighlights(s Snapshot) []string {
	var out []string

	out = append(out, fmt.Sprintf("Today's sales: %s from %s.",
		formatMoney(s.Currency, s.Aggregates.TodaySales), plural(s.Aggregates.OrderCount, "order")))

	if pct, ok := s.TrendPercent(); ok {
		periods := len(s.Trend)
		switch {
		case pct.GreaterThan(decimal.Zero):
			out = append(out, fmt.Sprintf("Sales are up %s%% over the last %d periods.", pct.StringFixed(1), periods))
		case pct.LessThan(decimal.Zero):
			out = append(out, fmt.Sprintf("Sales are down %s%% over the last %d periods.", pct.Abs().StringFixed(1), periods))
		default:
			out = append(out, fmt.Sprintf("Sales are flat over the last %d periods.", periods))
		}
	}

	switch {
	case s.ItemCount == 0:
		out = append(out, "No inventory items are recorded yet.")
	case s.Alerts.Count() == 0:
		out = append(out, fmt.Sprintf("All %s are above their minimum stock.", plural(s.ItemCount, "item")))
	default:
		if n := len(s.Alerts.Critical); n > 0 {
			out = append(out, fmt.Sprintf("%s below minimum stock: %s.", plural(n, "item"), names(s.Alerts.Critical)))
		}
		if n := len(s.Alerts.OutOfStock); n > 0 {
			out = append(out, fmt.Sprintf("%s out of stock: %s.", plural(n, "item"), names(s.Alerts.OutOfStock)))
		}
		if n := len(s.Alerts.Low); n > 0 {
			out = append(out, fmt.Sprintf("%s running low: %s.", plural(n, "item"), names(s.Alerts.Low)))
		}
	}

	if len(s.TopCustomers) > 0 {
		top := s.TopCustomers[0]
		out = append(out, fmt.Sprintf("Top customer: %s, %s across %s.",
			top.Name, formatMoney(s.Currency, top.TotalSpent), plural(top.OrderCount, "order")))
	}

	if !s.Online {
		out = append(out, "Offline: figures may be demo or cached data.")
	}
	return out
}

func formatMoney(currency string, v decimal.Decimal) string {
	if currency == "" {
		return v.StringFixed(2)
	}
	return currency + " " + v.StringFixed(2)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func names(items []model.InventoryItem) string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return strings.Join(out, ", ")
}
