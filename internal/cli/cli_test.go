package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bizdash/internal/config"
	"bizdash/internal/connectivity"
	"bizdash/internal/dispatch"
	"bizdash/internal/gateway"
	"bizdash/internal/insights"
	"bizdash/internal/llm"
	"bizdash/internal/model"
	"bizdash/internal/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRunner(t *testing.T, baseURL string, jsonOut bool) (*Runner, *bytes.Buffer) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cfg := config.Config{BaseURL: baseURL, Timeout: 2 * time.Second, DemoData: true}

	monitor := connectivity.New(logger)
	st := store.New(monitor, logger)
	gw := gateway.New(cfg, monitor, logger)
	d := dispatch.New(gw, st, monitor, logger)
	llmClient, err := llm.NewClient(cfg, logger)
	require.NoError(t, err)

	r := NewRunner(Options{JSON: jsonOut}, cfg, st, d, insights.New(llmClient, st, logger), monitor, logger)
	out := &bytes.Buffer{}
	r.out = out
	r.start(context.Background())
	return r, out
}

func fakeAPI(t *testing.T) string {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"aggregates":{"today_sales":"999.00","order_count":3,"customer_count":2},"time_series":[]}`))
	}).Methods(http.MethodGet)
	r.HandleFunc("/inventory", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Kettle","category":"Home","price":"1200","stock":4,"min_stock":2}]`))
	}).Methods(http.MethodGet)
	r.HandleFunc("/inventory", func(w http.ResponseWriter, r *http.Request) {
		var item model.InventoryItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		item.ID = "2"
		_ = json.NewEncoder(w).Encode(item)
	}).Methods(http.MethodPost)
	r.HandleFunc("/customers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"customers":[]}`))
	}).Methods(http.MethodGet)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestParseArgs(t *testing.T) {
	opts, err := ParseArgs([]string{"-json", "-base-url", " http://api.local ", "-timeout", "5", "set-stock", "demo-1", "4"}, io.Discard)
	require.NoError(t, err)
	assert.True(t, opts.JSON)
	assert.Equal(t, []string{"set-stock", "demo-1", "4"}, opts.Command)

	base := config.Config{BaseURL: "http://from-env", Timeout: 20 * time.Second, LogFile: "./bizdash.log", Debug: true}
	cfg := opts.Apply(base)
	assert.Equal(t, "http://api.local", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "./bizdash.log", cfg.LogFile, "unset flags keep config values")
	assert.True(t, cfg.Debug)

	opts, err = ParseArgs([]string{"-debug=false", "-log-file", ""}, io.Discard)
	require.NoError(t, err)
	cfg = opts.Apply(base)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.LogFile)
	assert.Empty(t, opts.Command)

	_, err = ParseArgs([]string{"-timeout", "-1"}, io.Discard)
	assert.Error(t, err)
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{line: "inventory", want: []string{"inventory"}},
		{line: `add-item "USB hub" Accessories 499 10 3`, want: []string{"add-item", "USB hub", "Accessories", "499", "10", "3"}},
		{line: "  set-stock   demo-1\t4 ", want: []string{"set-stock", "demo-1", "4"}},
		{line: `profile "" owner`, want: []string{"profile", "", "owner"}},
		{line: `ask "unterminated`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := splitArgs(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStartInDemoMode(t *testing.T) {
	r, out := newTestRunner(t, "", true)
	assert.True(t, r.store.AppMeta().Initialized)

	require.NoError(t, r.handle(context.Background(), []string{"inventory"}))

	var payload struct {
		Command string                `json:"command"`
		Result  []model.InventoryItem `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.Equal(t, "inventory", payload.Command)
	assert.Len(t, payload.Result, 5)
}

func TestWriteCommandOffline(t *testing.T) {
	r, out := newTestRunner(t, "", false)

	err := r.handle(context.Background(), []string{"set-stock", "demo-1", "3"})
	require.ErrorIs(t, err, model.ErrFeatureUnavailableOffline)
	assert.Contains(t, out.String(), "You are offline")

	item, ok := r.store.InventoryItem("demo-1")
	require.True(t, ok)
	assert.Equal(t, 18, item.Stock)
}

func TestCommandErrors(t *testing.T) {
	r, out := newTestRunner(t, "", true)

	err := r.handle(context.Background(), []string{"bogus"})
	assert.ErrorIs(t, err, ErrUnknownCommand)

	err = r.handle(context.Background(), []string{"set-stock", "demo-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: set-stock <id> <n>")

	err = r.handle(context.Background(), []string{"add-item", "Hub", "Accessories", "cheap", "1", "1"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)

	assert.Contains(t, out.String(), `"error"`)
}

func TestREPL(t *testing.T) {
	r, out := newTestRunner(t, "", false)
	r.in = strings.NewReader("theme dark\nlang en\nbogus\nalerts\nexit\n")

	require.NoError(t, r.runREPL(context.Background()))

	meta := r.store.AppMeta()
	assert.Equal(t, model.ThemeDark, meta.Theme)
	assert.Equal(t, "en", meta.Language)
	assert.Contains(t, out.String(), "Error: unknown command: bogus")
	assert.Contains(t, out.String(), "Below minimum:")
	assert.Contains(t, out.String(), "USB-C cable")
}

func TestOnlineStartReplacesDemoData(t *testing.T) {
	r, out := newTestRunner(t, fakeAPI(t), false)

	items := r.store.Inventory()
	require.Len(t, items, 1)
	assert.Equal(t, "Kettle", items[0].Name)
	assert.Empty(t, r.store.Customers())
	assert.Equal(t, 3, r.store.Dashboard().Aggregates.OrderCount)

	require.NoError(t, r.handle(context.Background(), []string{"add-item", "Toaster", "Home", "1499", "6", "2"}))
	_, ok := r.store.InventoryItem("2")
	assert.True(t, ok)

	require.NoError(t, r.handle(context.Background(), []string{"status"}))
	assert.Contains(t, out.String(), "Connection: online")
}

func TestInsightsCommandUsesRules(t *testing.T) {
	r, out := newTestRunner(t, "", false)

	require.NoError(t, r.handle(context.Background(), []string{"insights"}))
	assert.Contains(t, out.String(), "- Today's sales: INR 15750.50 from 23 orders.")

	err := r.handle(context.Background(), []string{"ask", "how", "are", "sales?"})
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestRefreshOutput(t *testing.T) {
	r, out := newTestRunner(t, "", false)

	require.NoError(t, r.handle(context.Background(), []string{"refresh"}))
	assert.Contains(t, out.String(), "dashboard: fallback")
	assert.Contains(t, out.String(), "inventory: fallback")

	results, err := r.dispatcher.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, dispatch.StateFallback, results[0].State)
}
