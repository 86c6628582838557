package model

type Status string

const (
	StatusCritical Status = "critical"
	StatusLow      Status = "low"
	StatusInStock  Status = "in-stock"
)

// StockStatus derives the stock status of an item. Anything under the
// minimum is critical; up to 150% of the minimum is low.
func StockStatus(stock, minStock int) Status {
	switch {
	case stock < minStock:
		return StatusCritical
	case 2*stock <= 3*minStock:
		return StatusLow
	default:
		return StatusInStock
	}
}

func (i InventoryItem) Status() Status {
	return StockStatus(i.Stock, i.MinStock)
}

func (i InventoryItem) OutOfStock() bool {
	return i.Stock == 0
}

type Alerts struct {
	Critical   []InventoryItem `json:"critical"`
	Low        []InventoryItem `json:"low"`
	OutOfStock []InventoryItem `json:"out_of_stock"`
}

func (a Alerts) Count() int {
	return len(a.Critical) + len(a.Low)
}

// BuildAlerts groups items that need attention. Out-of-stock items also
// appear under their status group.
func BuildAlerts(items []InventoryItem) Alerts {
	var alerts Alerts
	for _, item := range items {
		switch item.Status() {
		case StatusCritical:
			alerts.Critical = append(alerts.Critical, item)
		case StatusLow:
			alerts.Low = append(alerts.Low, item)
		}
		if item.OutOfStock() {
			alerts.OutOfStock = append(alerts.OutOfStock, item)
		}
	}
	return alerts
}
