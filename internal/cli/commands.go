package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bizdash/internal/model"

	"github.com/shopspring/decimal"
)

type command struct {
	name    string
	usage   string
	summary string
	minArgs int
	run     func(ctx context.Context, args []string) (any, error)
}

type statusView struct {
	Online     bool       `json:"online"`
	DemoMode   bool       `json:"demo_mode"`
	Loading    bool       `json:"loading"`
	SignedIn   bool       `json:"signed_in"`
	User       string     `json:"user,omitempty"`
	Business   string     `json:"business,omitempty"`
	Language   string     `json:"language"`
	Theme      string     `json:"theme"`
	Locale     string     `json:"locale"`
	Timezone   string     `json:"timezone"`
	Items      int        `json:"items"`
	Customers  int        `json:"customers"`
	Alerts     int        `json:"alerts"`
	Notices    int        `json:"notices"`
	LastChange *time.Time `json:"last_change,omitempty"`
}

type helpLine struct {
	Usage   string `json:"usage"`
	Summary string `json:"summary"`
}

type message string

func (r *Runner) commandTable() []command {
	return []command{
		{name: "status", usage: "status", summary: "connectivity, session and preferences", run: r.cmdStatus},
		{name: "dashboard", usage: "dashboard", summary: "today's sales and the recent trend", run: r.cmdDashboard},
		{name: "inventory", usage: "inventory", summary: "inventory items with stock status", run: r.cmdInventory},
		{name: "customers", usage: "customers", summary: "customers by lifetime spend", run: r.cmdCustomers},
		{name: "alerts", usage: "alerts", summary: "items at or near minimum stock", run: r.cmdAlerts},
		{name: "refresh", usage: "refresh", summary: "fetch everything from the server", run: r.cmdRefresh},
		{name: "add-item", usage: "add-item <name> <category> <price> <stock> <min>", summary: "create an inventory item", minArgs: 5, run: r.cmdAddItem},
		{name: "set-stock", usage: "set-stock <id> <n>", summary: "set an item's stock", minArgs: 2, run: r.cmdSetStock},
		{name: "set-price", usage: "set-price <id> <price>", summary: "set an item's price", minArgs: 2, run: r.cmdSetPrice},
		{name: "delete-item", usage: "delete-item <id>", summary: "delete an inventory item", minArgs: 1, run: r.cmdDeleteItem},
		{name: "add-customer", usage: "add-customer <name> <contact>", summary: "create a customer", minArgs: 2, run: r.cmdAddCustomer},
		{name: "delete-customer", usage: "delete-customer <id>", summary: "delete a customer", minArgs: 1, run: r.cmdDeleteCustomer},
		{name: "profile", usage: "profile [<name> <owner> <taxid> <currency>]", summary: "show or save the business profile", run: r.cmdProfile},
		{name: "login", usage: "login <token> <user> <name> <business>", summary: "store a session", minArgs: 4, run: r.cmdLogin},
		{name: "logout", usage: "logout", summary: "forget the session", run: r.cmdLogout},
		{name: "theme", usage: "theme <light|dark>", summary: "set the theme", minArgs: 1, run: r.cmdTheme},
		{name: "lang", usage: "lang <code>", summary: "set the interface language", minArgs: 1, run: r.cmdLang},
		{name: "notices", usage: "notices [clear]", summary: "show or clear notices", run: r.cmdNotices},
		{name: "insights", usage: "insights", summary: "summarize the business", run: r.cmdInsights},
		{name: "ask", usage: "ask <question>", summary: "ask the assistant (needs an LLM)", minArgs: 1, run: r.cmdAsk},
		{name: "help", usage: "help", summary: "list commands", run: r.cmdHelp},
	}
}

func (r *Runner) cmdStatus(_ context.Context, _ []string) (any, error) {
	session := r.store.Session()
	meta := r.store.AppMeta()
	view := statusView{
		Online:    r.store.Connected(),
		DemoMode:  strings.TrimSpace(r.cfg.BaseURL) == "",
		Loading:   r.store.Loading(),
		SignedIn:  session.Authenticated(),
		User:      session.DisplayName,
		Business:  r.store.BusinessProfile().Name,
		Language:  meta.Language,
		Theme:     string(meta.Theme),
		Locale:    meta.Locale,
		Timezone:  meta.Timezone,
		Items:     len(r.store.Inventory()),
		Customers: len(r.store.Customers()),
		Alerts:    model.BuildAlerts(r.store.Inventory()).Count(),
		Notices:   len(r.store.Notices()),
	}
	if r.monitor != nil {
		if at := r.monitor.LastChange(); !at.IsZero() {
			view.LastChange = &at
		}
	}
	return view, nil
}

func (r *Runner) cmdDashboard(_ context.Context, _ []string) (any, error) {
	return r.store.Dashboard(), nil
}

func (r *Runner) cmdInventory(_ context.Context, _ []string) (any, error) {
	return r.store.Inventory(), nil
}

func (r *Runner) cmdCustomers(_ context.Context, _ []string) (any, error) {
	return r.store.Customers(), nil
}

func (r *Runner) cmdAlerts(_ context.Context, _ []string) (any, error) {
	return model.BuildAlerts(r.store.Inventory()), nil
}

func (r *Runner) cmdRefresh(ctx context.Context, _ []string) (any, error) {
	return r.dispatcher.Refresh(ctx)
}

func (r *Runner) cmdAddItem(ctx context.Context, args []string) (any, error) {
	price, err := parseMoney("price", args[2])
	if err != nil {
		return nil, err
	}
	stock, err := parseCount("stock", args[3])
	if err != nil {
		return nil, err
	}
	minStock, err := parseCount("min_stock", args[4])
	if err != nil {
		return nil, err
	}
	return r.dispatcher.CreateInventoryItem(ctx, model.InventoryItem{
		Name:     args[0],
		Category: args[1],
		Price:    price,
		Stock:    stock,
		MinStock: minStock,
	})
}

func (r *Runner) cmdSetStock(ctx context.Context, args []string) (any, error) {
	stock, err := parseCount("stock", args[1])
	if err != nil {
		return nil, err
	}
	return r.dispatcher.UpdateInventoryItem(ctx, model.ID(args[0]), model.InventoryPatch{Stock: &stock})
}

func (r *Runner) cmdSetPrice(ctx context.Context, args []string) (any, error) {
	price, err := parseMoney("price", args[1])
	if err != nil {
		return nil, err
	}
	return r.dispatcher.UpdateInventoryItem(ctx, model.ID(args[0]), model.InventoryPatch{Price: &price})
}

func (r *Runner) cmdDeleteItem(ctx context.Context, args []string) (any, error) {
	if err := r.dispatcher.DeleteInventoryItem(ctx, model.ID(args[0])); err != nil {
		return nil, err
	}
	return message(fmt.Sprintf("Deleted item %s.", args[0])), nil
}

func (r *Runner) cmdAddCustomer(ctx context.Context, args []string) (any, error) {
	return r.dispatcher.CreateCustomer(ctx, model.Customer{Name: args[0], Contact: args[1]})
}

func (r *Runner) cmdDeleteCustomer(ctx context.Context, args []string) (any, error) {
	if err := r.dispatcher.DeleteCustomer(ctx, model.ID(args[0])); err != nil {
		return nil, err
	}
	return message(fmt.Sprintf("Deleted customer %s.", args[0])), nil
}

func (r *Runner) cmdProfile(ctx context.Context, args []string) (any, error) {
	if len(args) == 0 {
		return r.store.BusinessProfile(), nil
	}
	if len(args) < 4 {
		return nil, fmt.Errorf("usage: profile <name> <owner> <taxid> <currency>")
	}
	return r.dispatcher.SaveBusinessProfile(ctx, model.BusinessProfile{
		Name:      args[0],
		OwnerName: args[1],
		TaxID:     args[2],
		Currency:  strings.ToUpper(args[3]),
		Language:  r.store.AppMeta().Language,
	})
}

func (r *Runner) cmdLogin(_ context.Context, args []string) (any, error) {
	session := model.Session{
		Token:        args[0],
		UserID:       args[1],
		DisplayName:  args[2],
		BusinessName: args[3],
	}
	if err := r.dispatcher.SignIn(session); err != nil {
		return nil, err
	}
	return message(fmt.Sprintf("Signed in as %s.", session.DisplayName)), nil
}

func (r *Runner) cmdLogout(_ context.Context, _ []string) (any, error) {
	r.dispatcher.SignOut()
	return message("Signed out."), nil
}

func (r *Runner) cmdTheme(_ context.Context, args []string) (any, error) {
	return r.dispatcher.SetTheme(model.Theme(strings.ToLower(args[0])))
}

func (r *Runner) cmdLang(_ context.Context, args []string) (any, error) {
	return r.dispatcher.SetLanguage(args[0])
}

func (r *Runner) cmdNotices(_ context.Context, args []string) (any, error) {
	if len(args) > 0 && strings.EqualFold(args[0], "clear") {
		r.store.DismissNotices()
		return message("Notices cleared."), nil
	}
	return r.store.Notices(), nil
}

func (r *Runner) cmdInsights(ctx context.Context, _ []string) (any, error) {
	return r.advisor.Summarize(ctx)
}

func (r *Runner) cmdAsk(ctx context.Context, args []string) (any, error) {
	return r.advisor.Ask(ctx, strings.Join(args, " "), r.conv)
}

func (r *Runner) cmdHelp(_ context.Context, _ []string) (any, error) {
	lines := make([]helpLine, 0, len(r.commands)+1)
	for _, cmd := range r.commands {
		lines = append(lines, helpLine{Usage: cmd.usage, Summary: cmd.summary})
	}
	return append(lines, helpLine{Usage: "exit", Summary: "leave the session"}), nil
}

func parseMoney(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, &model.ValidationError{Field: field, Reason: "must be a number"}
	}
	return d, nil
}

func parseCount(field, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &model.ValidationError{Field: field, Reason: "must be a whole number"}
	}
	return n, nil
}
