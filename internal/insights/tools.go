package insights

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bizdash/internal/llm"
	"bizdash/internal/model"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const (
	defaultItemLimit     = 20
	defaultCustomerLimit = 10
	maxToolLimit         = 50
)

type ToolCallRecord struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
	MS   int64          `json:"ms"`
	OK   bool           `json:"ok"`
	Err  string         `json:"err,omitempty"`
}

type itemRow struct {
	ID       model.ID     `json:"id"`
	Name     string       `json:"name"`
	Category string       `json:"category"`
	Price    string       `json:"price"`
	Stock    int          `json:"stock"`
	MinStock int          `json:"min_stock"`
	Status   model.Status `json:"status"`
}

type customerRow struct {
	ID          model.ID   `json:"id"`
	Name        string     `json:"name"`
	OrderCount  int        `json:"order_count"`
	TotalSpent  string     `json:"total_spent"`
	LastOrderAt *time.Time `json:"last_order_at,omitempty"`
}

// executeToolCalls answers every call from the Store. Bad arguments are
// reported back to the model rather than aborting the exchange.
func (a *Advisor) executeToolCalls(calls []llm.ToolCall) ([]openrouter.ChatCompletionMessage, []ToolCallRecord) {
	messages := make([]openrouter.ChatCompletionMessage, 0, len(calls))
	records := make([]ToolCallRecord, 0, len(calls))

	for _, call := range calls {
		start := time.Now()
		args := map[string]any{}
		var (
			result any
			err    error
		)
		if call.Function.Arguments != "" {
			if jerr := json.Unmarshal([]byte(call.Function.Arguments), &args); jerr != nil {
				err = fmt.Errorf("invalid tool args: %w", jerr)
			}
		}
		if err == nil {
			result, err = a.runTool(call.Function.Name, args)
		}

		payload := ""
		if err == nil {
			encoded, merr := json.Marshal(result)
			if merr != nil {
				err = merr
			} else {
				payload = string(encoded)
			}
		}

		record := ToolCallRecord{
			Name: call.Function.Name,
			Args: args,
			MS:   time.Since(start).Milliseconds(),
			OK:   err == nil,
		}
		if err != nil {
			record.Err = err.Error()
			payload = toolErrorPayload(record.Err)
		}
		a.logger.Info("tool call",
			zap.String("name", record.Name),
			zap.Any("args", record.Args),
			zap.Int64("ms", record.MS),
			zap.Bool("ok", record.OK),
			zap.String("err", record.Err),
		)

		records = append(records, record)
		messages = append(messages, openrouter.ToolMessage(call.ID, payload))
	}

	return messages, records
}

func (a *Advisor) runTool(name string, args map[string]any) (any, error) {
	switch name {
	case llm.ToolGetDashboard:
		return a.store.Dashboard(), nil
	case llm.ToolGetAlerts:
		alerts := model.BuildAlerts(a.store.Inventory())
		return map[string][]itemRow{
			"critical":     itemRows(alerts.Critical),
			"low":          itemRows(alerts.Low),
			"out_of_stock": itemRows(alerts.OutOfStock),
		}, nil
	case llm.ToolListInventory:
		status, _ := getStringArg(args, "status")
		category, _ := getStringArg(args, "category")
		limit := clampLimit(getIntArg(args, "limit", defaultItemLimit))

		rows := make([]itemRow, 0, limit)
		for _, item := range a.store.Inventory() {
			if status != "" && status != "all" && string(item.Status()) != status {
				continue
			}
			if category != "" && !strings.EqualFold(item.Category, category) {
				continue
			}
			rows = append(rows, toItemRow(item))
			if len(rows) == limit {
				break
			}
		}
		return rows, nil
	case llm.ToolListCustomers:
		sortBy, _ := getStringArg(args, "sort")
		limit := clampLimit(getIntArg(args, "limit", defaultCustomerLimit))

		var customers []model.Customer
		switch sortBy {
		case "", "total_spent":
			customers = topBySpend(a.store.Customers(), limit)
		case "recent":
			customers = mostRecent(a.store.Customers())
			if len(customers) > limit {
				customers = customers[:limit]
			}
		default:
			return nil, fmt.Errorf("unknown sort %q", sortBy)
		}
		rows := make([]customerRow, len(customers))
		for i, c := range customers {
			rows[i] = customerRow{
				ID:          c.ID,
				Name:        c.Name,
				OrderCount:  c.OrderCount,
				TotalSpent:  c.TotalSpent.StringFixed(2),
				LastOrderAt: c.LastOrderAt,
			}
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func toItemRow(item model.InventoryItem) itemRow {
	return itemRow{
		ID:       item.ID,
		Name:     item.Name,
		Category: item.Category,
		Price:    item.Price.StringFixed(2),
		Stock:    item.Stock,
		MinStock: item.MinStock,
		Status:   item.Status(),
	}
}

func itemRows(items []model.InventoryItem) []itemRow {
	rows := make([]itemRow, len(items))
	for i, item := range items {
		rows[i] = toItemRow(item)
	}
	return rows
}

func clampLimit(n int) int {
	if n < 1 {
		return 1
	}
	return min(n, maxToolLimit)
}

func getStringArg(args map[string]any, key string) (string, bool) {
	value, ok := args[key]
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func getIntArg(args map[string]any, key string, fallback int) int {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func toolErrorPayload(message string) string {
	encoded, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return `{"error":"tool failed"}`
	}
	return string(encoded)
}
