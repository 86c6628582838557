package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var item InventoryItem
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "name": "Cable", "price": 9.5}`), &item))
	assert.Equal(t, ID("42"), item.ID)
	assert.True(t, decimal.RequireFromString("9.5").Equal(item.Price))

	require.NoError(t, json.Unmarshal([]byte(`{"id": "abc"}`), &item))
	assert.Equal(t, ID("abc"), item.ID)

	err := json.Unmarshal([]byte(`{"id": true}`), &item)
	assert.Error(t, err)
}

func TestTempID(t *testing.T) {
	id := NewTempID()
	assert.True(t, id.Temporary())
	assert.False(t, ID("17").Temporary())
	assert.NotEqual(t, id, NewTempID())
}

func TestInventoryItemValidate(t *testing.T) {
	valid := InventoryItem{ID: "1", Name: "Cable", Price: decimal.NewFromInt(10), Stock: 1, MinStock: 1}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		mut   func(*InventoryItem)
		field string
	}{
		{"missing id", func(i *InventoryItem) { i.ID = "" }, "id"},
		{"missing name", func(i *InventoryItem) { i.Name = " " }, "name"},
		{"negative price", func(i *InventoryItem) { i.Price = decimal.NewFromInt(-1) }, "price"},
		{"negative stock", func(i *InventoryItem) { i.Stock = -1 }, "stock"},
		{"negative min stock", func(i *InventoryItem) { i.MinStock = -2 }, "min_stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid
			tt.mut(&item)
			var verr *ValidationError
			require.ErrorAs(t, item.Validate(), &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateUnique(t *testing.T) {
	items := []Customer{{ID: "1"}, {ID: "2"}, {ID: "1"}}
	var verr *ValidationError
	require.ErrorAs(t, ValidateUnique(items), &verr)
	assert.Equal(t, "id", verr.Field)
	assert.NoError(t, ValidateUnique(items[:2]))
}

func TestCustomerPatchMonotonicTotal(t *testing.T) {
	current := Customer{ID: "1", Name: "Sunita", TotalSpent: decimal.NewFromInt(500)}
	lower := decimal.NewFromInt(100)

	err := CustomerPatch{TotalSpent: &lower}.CheckAgainst(current)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "total_spent", verr.Field)

	assert.NoError(t, CustomerPatch{TotalSpent: &lower, Correction: true}.CheckAgainst(current))

	higher := decimal.NewFromInt(900)
	assert.NoError(t, CustomerPatch{TotalSpent: &higher}.CheckAgainst(current))
}

func TestDashboardPatchKeepsUntouchedFields(t *testing.T) {
	prior := DashboardSnapshot{
		Aggregates: Aggregates{TodaySales: decimal.NewFromInt(100), OrderCount: 3, CustomerCount: 10},
		TimeSeries: []Point{{Period: "mon", Value: decimal.NewFromInt(1)}},
	}
	orders := 7

	next := DashboardPatch{Aggregates: &AggregatesPatch{OrderCount: &orders}}.Apply(prior)

	assert.Equal(t, 7, next.Aggregates.OrderCount)
	assert.Equal(t, 10, next.Aggregates.CustomerCount)
	assert.True(t, decimal.NewFromInt(100).Equal(next.Aggregates.TodaySales))
	require.Len(t, next.TimeSeries, 1)

	next.TimeSeries[0].Period = "changed"
	assert.Equal(t, "mon", prior.TimeSeries[0].Period)
}

func TestUnavailableErrorMatching(t *testing.T) {
	err := error(&UnavailableError{Reason: &ServerError{Status: 503}})

	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, 503, StatusOf(err))
	assert.False(t, errors.Is(err, ErrNetworkUnavailable))

	offline := &UnavailableError{Reason: ErrNetworkUnavailable}
	assert.True(t, errors.Is(offline, ErrNetworkUnavailable))
	assert.Zero(t, StatusOf(offline))
}

func TestMetaValidate(t *testing.T) {
	assert.NoError(t, DefaultAppMeta().Validate())
	assert.NoError(t, DefaultSession().Validate())

	meta := DefaultAppMeta()
	meta.Theme = "sepia"
	assert.Error(t, meta.Validate())

	assert.Error(t, Session{Token: "abc"}.Validate())
}
