package llm

import openrouter "github.com/revrost/go-openrouter"

type ToolCall = openrouter.ToolCall

const (
	ToolGetDashboard  = "GetDashboard"
	ToolListInventory = "ListInventory"
	ToolGetAlerts     = "GetStockAlerts"
	ToolListCustomers = "ListCustomers"
)

// ToolSchemas describes the read-only views of the business data the model
// may ask for.
func ToolSchemas() []openrouter.Tool {
	return []openrouter.Tool{
		getDashboardTool(),
		listInventoryTool(),
		getAlertsTool(),
		listCustomersTool(),
	}
}

func getDashboardTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        ToolGetDashboard,
			Description: "Get today's sales total, order count, customer count and the recent sales trend (one point per period, oldest first).",
			Parameters: map[string]any{
				"type":                 "object",
				"properties":           map[string]any{},
				"additionalProperties": false,
			},
		},
	}
}

func listInventoryTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        ToolListInventory,
			Description: "List inventory items with price, stock, minimum stock and derived status. Use status to narrow the list.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"status": map[string]any{
						"type":        "string",
						"enum":        []string{"all", "critical", "low", "in-stock"},
						"description": "Only return items with this status. Default: all.",
					},
					"category": map[string]any{
						"type":        "string",
						"description": "Optional case-insensitive category filter.",
					},
					"limit": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"maximum":     50,
						"description": "Maximum items to return. Default: 20.",
					},
				},
				"additionalProperties": false,
			},
		},
	}
}

func getAlertsTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        ToolGetAlerts,
			Description: "Get items below minimum stock (critical), items within 150% of minimum (low) and items with zero stock.",
			Parameters: map[string]any{
				"type":                 "object",
				"properties":           map[string]any{},
				"additionalProperties": false,
			},
		},
	}
}

func listCustomersTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        ToolListCustomers,
			Description: "List customers with order count, total spent and last order time.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sort": map[string]any{
						"type":        "string",
						"enum":        []string{"total_spent", "recent"},
						"description": "Sort by lifetime spend or by most recent order. Default: total_spent.",
					},
					"limit": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"maximum":     50,
						"description": "Maximum customers to return. Default: 10.",
					},
				},
				"additionalProperties": false,
			},
		},
	}
}
