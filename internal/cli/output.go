package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"bizdash/internal/dispatch"
	"bizdash/internal/insights"
	"bizdash/internal/model"
	"bizdash/internal/store"
)

func writeHuman(out io.Writer, result any) {
	switch v := result.(type) {
	case message:
		fmt.Fprintln(out, string(v))
	case statusView:
		writeStatus(out, v)
	case model.DashboardSnapshot:
		writeDashboard(out, v)
	case []model.InventoryItem:
		writeItems(out, v)
	case model.InventoryItem:
		writeItems(out, []model.InventoryItem{v})
	case []model.Customer:
		writeCustomers(out, v)
	case model.Customer:
		writeCustomers(out, []model.Customer{v})
	case model.Alerts:
		writeAlerts(out, v)
	case []dispatch.Result:
		writeResults(out, v)
	case model.BusinessProfile:
		fmt.Fprintf(out, "%s (owner: %s, tax id: %s, currency: %s)\n",
			orDash(v.Name), orDash(v.OwnerName), orDash(v.TaxID), orDash(v.Currency))
	case model.AppMeta:
		fmt.Fprintf(out, "Language %s, theme %s, locale %s, timezone %s.\n", v.Language, v.Theme, v.Locale, v.Timezone)
	case []store.Notice:
		writeNotices(out, v)
	case insights.Summary:
		writeSummary(out, v)
	case []helpLine:
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, line := range v {
			fmt.Fprintf(tw, "  %s\t%s\n", line.Usage, line.Summary)
		}
		_ = tw.Flush()
	default:
		fmt.Fprintf(out, "%v\n", v)
	}
}

func writeStatus(out io.Writer, v statusView) {
	conn := "offline"
	if v.Online {
		conn = "online"
	}
	if v.DemoMode {
		conn += " (demo mode, no server configured)"
	}
	fmt.Fprintf(out, "Connection: %s\n", conn)
	if v.LastChange != nil {
		fmt.Fprintf(out, "Last change: %s\n", v.LastChange.Format(time.RFC3339))
	}
	if v.SignedIn {
		fmt.Fprintf(out, "Signed in: %s\n", orDash(v.User))
	} else {
		fmt.Fprintln(out, "Signed in: no")
	}
	fmt.Fprintf(out, "Business: %s\n", orDash(v.Business))
	fmt.Fprintf(out, "Items: %d (%d need attention), customers: %d, notices: %d\n", v.Items, v.Alerts, v.Customers, v.Notices)
	fmt.Fprintf(out, "Language: %s, theme: %s, locale: %s, timezone: %s\n", v.Language, v.Theme, v.Locale, v.Timezone)
}

func writeDashboard(out io.Writer, d model.DashboardSnapshot) {
	fmt.Fprintf(out, "Today's sales: %s\n", d.Aggregates.TodaySales.StringFixed(2))
	fmt.Fprintf(out, "Orders: %d\n", d.Aggregates.OrderCount)
	fmt.Fprintf(out, "Customers: %d\n", d.Aggregates.CustomerCount)
	if len(d.TimeSeries) == 0 {
		return
	}
	fmt.Fprintln(out, "\nTrend:")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, p := range d.TimeSeries {
		fmt.Fprintf(tw, "  %s\t%s\t\n", p.Period, p.Value.StringFixed(2))
	}
	_ = tw.Flush()
}

func writeItems(out io.Writer, items []model.InventoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(out, "- (no items)")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tMIN\tSTATUS")
	for _, item := range items {
		status := string(item.Status())
		if item.OutOfStock() {
			status += ", out of stock"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			item.ID, item.Name, orDash(item.Category), item.Price.StringFixed(2), item.Stock, item.MinStock, status)
	}
	_ = tw.Flush()
}

func writeCustomers(out io.Writer, customers []model.Customer) {
	if len(customers) == 0 {
		fmt.Fprintln(out, "- (no customers)")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCONTACT\tORDERS\tTOTAL\tLAST ORDER")
	for _, c := range customers {
		last := "-"
		if c.LastOrderAt != nil {
			last = c.LastOrderAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			c.ID, c.Name, orDash(c.Contact), c.OrderCount, c.TotalSpent.StringFixed(2), last)
	}
	_ = tw.Flush()
}

func writeAlerts(out io.Writer, a model.Alerts) {
	if a.Count() == 0 {
		fmt.Fprintln(out, "No stock alerts.")
		return
	}
	groups := []struct {
		title string
		items []model.InventoryItem
	}{
		{"Below minimum", a.Critical},
		{"Running low", a.Low},
		{"Out of stock", a.OutOfStock},
	}
	for _, g := range groups {
		if len(g.items) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s:\n", g.title)
		for _, item := range g.items {
			fmt.Fprintf(out, "- %s (id=%s): %d of min %d\n", item.Name, item.ID, item.Stock, item.MinStock)
		}
	}
}

func writeResults(out io.Writer, results []dispatch.Result) {
	for _, res := range results {
		line := fmt.Sprintf("%s: %s", res.Kind, res.State)
		switch {
		case res.Discarded:
			line += " (superseded)"
		case res.Reason != nil:
			line += " (" + dispatch.Describe(res.Reason) + ")"
		}
		fmt.Fprintln(out, line)
	}
}

func writeNotices(out io.Writer, notices []store.Notice) {
	if len(notices) == 0 {
		fmt.Fprintln(out, "No notices.")
		return
	}
	for _, n := range notices {
		fmt.Fprintf(out, "[%s] %s %s: %s\n", n.At.Format("15:04:05"), strings.ToUpper(string(n.Level)), n.Op, n.Message)
	}
}

func writeSummary(out io.Writer, s insights.Summary) {
	if s.Source == insights.SourceRules {
		for _, line := range s.Highlights {
			fmt.Fprintf(out, "- %s\n", line)
		}
	} else {
		fmt.Fprintln(out, strings.TrimSpace(s.Text))
	}
	if len(s.ToolCalls) > 0 {
		names := make([]string, len(s.ToolCalls))
		for i, call := range s.ToolCalls {
			names[i] = call.Name
		}
		fmt.Fprintf(out, "\n(looked at: %s)\n", strings.Join(names, ", "))
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
