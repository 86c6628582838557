// Package demo seeds the Store with synthetic data so the dashboard is
// usable before, or without, a reachable API.
package demo

import (
	"time"

	"bizdash/internal/model"
	"bizdash/internal/store"

	"github.com/shopspring/decimal"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func Profile() model.BusinessProfile {
	return model.BusinessProfile{
		Name:      "Ram Electronics",
		OwnerName: "Ram Sharma",
		Currency:  "INR",
		Language:  model.DefaultLanguage,
	}
}

func Dashboard() model.DashboardSnapshot {
	trend := []string{"12500", "14200", "13800", "15300", "16100", "14700", "15750"}
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	series := make([]model.Point, len(trend))
	for i, v := range trend {
		series[i] = model.Point{Period: days[i], Value: money(v)}
	}
	return model.DashboardSnapshot{
		Aggregates: model.Aggregates{
			TodaySales:    money("15750.50"),
			OrderCount:    23,
			CustomerCount: 234,
		},
		TimeSeries: series,
	}
}

func Inventory() []model.InventoryItem {
	return []model.InventoryItem{
		{ID: "demo-1", Name: "Smartphone", Category: "Smartphones", Price: money("12999"), Stock: 18, MinStock: 5},
		{ID: "demo-2", Name: "iPhone charger", Category: "Accessories", Price: money("1499"), Stock: 3, MinStock: 10},
		{ID: "demo-3", Name: "Bluetooth earbuds", Category: "Audio", Price: money("2499"), Stock: 12, MinStock: 8},
		{ID: "demo-4", Name: "64GB memory card", Category: "Storage", Price: money("599"), Stock: 25, MinStock: 10},
		{ID: "demo-5", Name: "USB-C cable", Category: "Accessories", Price: money("299"), Stock: 0, MinStock: 15},
	}
}

func Customers(now time.Time) []model.Customer {
	at := func(d time.Duration) *time.Time {
		t := now.Add(-d)
		return &t
	}
	return []model.Customer{
		{ID: "demo-c1", Name: "Sunita Devi", Contact: "+91 98100 00001", OrderCount: 14, TotalSpent: money("32499"), LastOrderAt: at(5 * time.Minute)},
		{ID: "demo-c2", Name: "Raj Kumar", Contact: "+91 98100 00002", OrderCount: 6, TotalSpent: money("11850"), LastOrderAt: at(30 * time.Minute)},
		{ID: "demo-c3", Name: "Anil Gupta", Contact: "+91 98100 00003", OrderCount: 2, TotalSpent: money("2998"), LastOrderAt: at(72 * time.Hour)},
	}
}

// Seed replaces the entity slices with demo data. Session and app meta are
// left alone.
func Seed(st *store.Store) error {
	if err := st.SetBusinessProfile(Profile()); err != nil {
		return err
	}
	if err := st.ReplaceDashboard(Dashboard()); err != nil {
		return err
	}
	if err := st.ReplaceInventory(Inventory()); err != nil {
		return err
	}
	return st.ReplaceCustomers(Customers(time.Now()))
}
