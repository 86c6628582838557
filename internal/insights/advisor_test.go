package insights

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"bizdash/internal/config"
	"bizdash/internal/demo"
	"bizdash/internal/llm"
	"bizdash/internal/model"
	"bizdash/internal/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func demoStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(nil, zaptest.NewLogger(t))
	require.NoError(t, demo.Seed(st))
	return st
}

func newAdvisor(t *testing.T, st *store.Store, llmURL string) *Advisor {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cfg := config.Config{Timeout: 2 * time.Second}
	if llmURL != "" {
		cfg.LLMBaseURL = llmURL
		cfg.LLMAPIKey = "test-key"
		cfg.LLMModel = "test/model"
	}
	client, err := llm.NewClient(cfg, logger)
	require.NoError(t, err)
	return New(client, st, logger)
}

// fakeLLM answers chat completions with the given bodies in order and
// records the request bodies it saw.
type fakeLLM struct {
	mu       sync.Mutex
	replies  []string
	requests []string
}

func (f *fakeLLM) serve(t *testing.T) string {
	t.Helper()
	r := mux.NewRouter()
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, string(body))
		n := len(f.requests)
		f.mu.Unlock()
		if n > len(f.replies) {
			http.Error(w, `{"error":{"message":"unexpected call"}}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(f.replies[n-1]))
	}).Methods(http.MethodPost)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

func (f *fakeLLM) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func textReply(text string) string {
	content, _ := json.Marshal(text)
	return `{"id":"gen-1","object":"chat.completion","created":1,"model":"test/model",` +
		`"choices":[{"index":0,"message":{"role":"assistant","content":` + string(content) + `},"finish_reason":"stop"}],` +
		`"usage":{"prompt_tokens":12,"completion_tokens":5,"total_tokens":17}}`
}

func toolReply(id, name, args string) string {
	quoted, _ := json.Marshal(args)
	return `{"id":"gen-0","object":"chat.completion","created":1,"model":"test/model",` +
		`"choices":[{"index":0,"message":{"role":"assistant","content":"","tool_calls":[` +
		`{"id":"` + id + `","type":"function","function":{"name":"` + name + `","arguments":` + string(quoted) + `}}]},` +
		`"finish_reason":"tool_calls"}]}`
}

func TestRuleHighlightsOnDemoData(t *testing.T) {
	snap := Take(demoStore(t), 3)

	assert.Equal(t, []string{
		"Today's sales: INR 15750.50 from 23 orders.",
		"Sales are up 26.0% over the last 7 periods.",
		"2 items below minimum stock: iPhone charger, USB-C cable.",
		"1 item out of stock: USB-C cable.",
		"1 item running low: Bluetooth earbuds.",
		"Top customer: Sunita Devi, INR 32499.00 across 14 orders.",
		"Offline: figures may be demo or cached data.",
	}, ruleHighlights(snap))
}

func TestRuleHighlightsHealthyStock(t *testing.T) {
	snap := Snapshot{
		Currency:  "INR",
		Online:    true,
		ItemCount: 1,
		Trend: []model.Point{
			{Period: "Mon", Value: demo.Dashboard().TimeSeries[1].Value},
			{Period: "Tue", Value: demo.Dashboard().TimeSeries[0].Value},
		},
	}

	got := ruleHighlights(snap)
	assert.Equal(t, "Today's sales: INR 0.00 from 0 orders.", got[0])
	assert.Contains(t, got[1], "Sales are down")
	assert.Equal(t, "All 1 item are above their minimum stock.", got[2])
	assert.Len(t, got, 3)
}

func TestSummarizeWithoutLLMUsesRules(t *testing.T) {
	advisor := newAdvisor(t, demoStore(t), "")

	summary, err := advisor.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceRules, summary.Source)
	assert.Contains(t, summary.Text, "USB-C cable")
	assert.Equal(t, 5, summary.Snapshot.ItemCount)
	assert.False(t, summary.Snapshot.Online)
}

func TestSummarizeFallsBackWhenLLMFails(t *testing.T) {
	fake := &fakeLLM{}
	advisor := newAdvisor(t, demoStore(t), fake.serve(t))

	summary, err := advisor.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceRules, summary.Source)
	assert.NotEmpty(t, summary.Highlights)
	assert.Len(t, fake.seen(), 1)
}

func TestSummarizeWithLLM(t *testing.T) {
	fake := &fakeLLM{replies: []string{textReply("Sales are strong. Reorder USB-C cables today.")}}
	advisor := newAdvisor(t, demoStore(t), fake.serve(t))

	summary, err := advisor.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, summary.Source)
	assert.Equal(t, "Sales are strong. Reorder USB-C cables today.", summary.Text)
	assert.NotEmpty(t, summary.Highlights)

	requests := fake.seen()
	require.Len(t, requests, 1)
	assert.Contains(t, requests[0], "Ram Electronics")
	assert.Contains(t, requests[0], "test/model")
}

func TestAskRunsToolCalls(t *testing.T) {
	fake := &fakeLLM{replies: []string{
		toolReply("call_1", llm.ToolGetAlerts, "{}"),
		textReply("Reorder the USB-C cable and iPhone charger."),
	}}
	advisor := newAdvisor(t, demoStore(t), fake.serve(t))
	conv := NewConversation(0, 0, zaptest.NewLogger(t))

	answer, err := advisor.Ask(context.Background(), "What should I reorder?", conv)
	require.NoError(t, err)
	assert.Equal(t, "Reorder the USB-C cable and iPhone charger.", answer.Text)

	require.Len(t, answer.ToolCalls, 1)
	assert.Equal(t, llm.ToolGetAlerts, answer.ToolCalls[0].Name)
	assert.True(t, answer.ToolCalls[0].OK)

	requests := fake.seen()
	require.Len(t, requests, 2)
	assert.Contains(t, requests[1], "call_1")
	assert.Contains(t, requests[1], "USB-C cable")

	// system, user, assistant tool call, tool result, final answer
	assert.Equal(t, 5, conv.Len())
}

func TestAskKeepsConversationOnFailure(t *testing.T) {
	fake := &fakeLLM{replies: []string{textReply("Sales are steady.")}}
	advisor := newAdvisor(t, demoStore(t), fake.serve(t))
	conv := NewConversation(0, 0, zaptest.NewLogger(t))

	_, err := advisor.Ask(context.Background(), "How are sales?", conv)
	require.NoError(t, err)
	require.Equal(t, 3, conv.Len())

	// the fake has no reply left and answers 500
	_, err = advisor.Ask(context.Background(), "And customers?", conv)
	require.Error(t, err)

	assert.Equal(t, 3, conv.Len())
	last := conv.Messages()[conv.Len()-1]
	assert.Equal(t, "assistant", last.Role)
	assert.Equal(t, "Sales are steady.", last.Content.Text)
}

func TestAskRequiresLLM(t *testing.T) {
	advisor := newAdvisor(t, demoStore(t), "")

	_, err := advisor.Ask(context.Background(), "How are sales?", nil)
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	_, err = advisor.Ask(context.Background(), "  ", nil)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRunTool(t *testing.T) {
	advisor := newAdvisor(t, demoStore(t), "")

	t.Run("inventory by status", func(t *testing.T) {
		out, err := advisor.runTool(llm.ToolListInventory, map[string]any{"status": "critical"})
		require.NoError(t, err)
		rows := out.([]itemRow)
		require.Len(t, rows, 2)
		assert.Equal(t, model.ID("demo-2"), rows[0].ID)
		assert.Equal(t, "1499.00", rows[0].Price)
	})

	t.Run("inventory by category with limit", func(t *testing.T) {
		out, err := advisor.runTool(llm.ToolListInventory, map[string]any{"category": "accessories", "limit": float64(1)})
		require.NoError(t, err)
		assert.Len(t, out.([]itemRow), 1)
	})

	t.Run("customers by recency", func(t *testing.T) {
		out, err := advisor.runTool(llm.ToolListCustomers, map[string]any{"sort": "recent", "limit": "2"})
		require.NoError(t, err)
		rows := out.([]customerRow)
		require.Len(t, rows, 2)
		assert.Equal(t, "Sunita Devi", rows[0].Name)
		assert.Equal(t, "Raj Kumar", rows[1].Name)
	})

	t.Run("bad sort", func(t *testing.T) {
		_, err := advisor.runTool(llm.ToolListCustomers, map[string]any{"sort": "alphabetical"})
		assert.Error(t, err)
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := advisor.runTool("DropTables", nil)
		assert.Error(t, err)
	})
}

func TestToolErrorPayload(t *testing.T) {
	payload := toolErrorPayload(`bad "args"`)
	assert.True(t, strings.HasPrefix(payload, `{"error":`))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, `bad "args"`, decoded["error"])
}
