package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bizdash/internal/config"
	"bizdash/internal/connectivity"
	"bizdash/internal/model"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestGateway(t *testing.T, baseURL string) (*Gateway, *connectivity.Monitor) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	monitor := connectivity.New(logger)
	cfg := config.Config{BaseURL: baseURL, Timeout: 2 * time.Second}
	return New(cfg, monitor, logger), monitor
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/api/inventory", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":1,"name":"Charger","stock":2,"min_stock":5}]}`))
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/inventory", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 9, "name": body["name"]})
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/whoami", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"auth":       r.Header.Get("Authorization"),
			"request_id": r.Header.Get(requestIDHeader),
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/broken", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [`))
	})
	r.HandleFunc("/api/fail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	r.HandleFunc("/api/invalid", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"field":"price","reason":"must not be negative"}`))
	})
	r.HandleFunc("/api/empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestCallSuccessMarksConnectivityUp(t *testing.T) {
	srv := newTestServer(t)
	gw, monitor := newTestGateway(t, srv.URL+"/api")

	raw, err := gw.Call(context.Background(), http.MethodGet, "/inventory", nil)
	require.NoError(t, err)
	assert.True(t, monitor.Up())

	items, err := DecodeList[model.InventoryItem](raw, "inventory")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.ID("1"), items[0].ID)
	assert.Equal(t, 5, items[0].MinStock)
}

func TestCallSendsBodyAndToken(t *testing.T) {
	srv := newTestServer(t)
	gw, _ := newTestGateway(t, srv.URL+"/api")
	gw.SetTokenSource(func() string { return "secret" })

	raw, err := gw.Call(context.Background(), http.MethodPost, "/inventory", map[string]any{"name": "Cable"})
	require.NoError(t, err)
	created, err := Decode[model.InventoryItem](raw)
	require.NoError(t, err)
	assert.Equal(t, model.ID("9"), created.ID)
	assert.Equal(t, "Cable", created.Name)

	raw, err = gw.Call(context.Background(), http.MethodGet, "/whoami", nil)
	require.NoError(t, err)
	headers, err := Decode[map[string]string](raw)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", headers["auth"])
	assert.NotEmpty(t, headers["request_id"])
}

func TestCallFailures(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		endpoint string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "server error",
			endpoint: "/fail",
			check: func(t *testing.T, err error) {
				var serverErr *model.ServerError
				require.ErrorAs(t, err, &serverErr)
				assert.Equal(t, http.StatusInternalServerError, serverErr.Status)
			},
		},
		{
			name:     "malformed json",
			endpoint: "/broken",
			check: func(t *testing.T, err error) {
				var verr *model.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "body", verr.Field)
			},
		},
		{
			name:     "server validation",
			endpoint: "/invalid",
			check: func(t *testing.T, err error) {
				var verr *model.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "price", verr.Field)
			},
		},
		{
			name:     "not found",
			endpoint: "/missing",
			check: func(t *testing.T, err error) {
				assert.Equal(t, http.StatusNotFound, model.StatusOf(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, monitor := newTestGateway(t, srv.URL+"/api")
			monitor.Report(true)

			raw, err := gw.Call(context.Background(), http.MethodGet, tt.endpoint, nil)
			require.Error(t, err)
			assert.Nil(t, raw)
			assert.True(t, errors.Is(err, model.ErrUnavailable))
			assert.False(t, monitor.Up())
			tt.check(t, err)
		})
	}
}

func TestCallEmptyBodyIsNull(t *testing.T) {
	srv := newTestServer(t)
	gw, monitor := newTestGateway(t, srv.URL+"/api")

	raw, err := gw.Call(context.Background(), http.MethodDelete, "/empty", nil)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("null"), raw)
	assert.True(t, monitor.Up())
}

func TestCallUnreachableServer(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()

	gw, monitor := newTestGateway(t, url)
	monitor.Report(true)

	_, err := gw.Call(context.Background(), http.MethodGet, "/inventory", nil)
	assert.True(t, errors.Is(err, model.ErrUnavailable))
	assert.True(t, errors.Is(err, model.ErrNetworkUnavailable))
	assert.False(t, monitor.Up())
}

func TestCallCancelledKeepsConnectivity(t *testing.T) {
	release := make(chan struct{})
	r := mux.NewRouter()
	r.HandleFunc("/api/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	gw, monitor := newTestGateway(t, srv.URL+"/api")
	monitor.Report(true)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := gw.Call(ctx, http.MethodGet, "/slow", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, model.ErrNetworkUnavailable))
	assert.True(t, monitor.Up())
	assert.Equal(t, uint64(1), monitor.Changes())
}

func TestCallWithoutBaseURLIsDemoMode(t *testing.T) {
	gw, monitor := newTestGateway(t, "")
	assert.False(t, gw.Configured())

	_, err := gw.Call(context.Background(), http.MethodGet, "/dashboard", nil)
	assert.True(t, errors.Is(err, model.ErrNetworkUnavailable))
	assert.False(t, monitor.Up())
	assert.Equal(t, uint64(1), monitor.Changes())
}

func TestDecodeList(t *testing.T) {
	bare, err := DecodeList[model.Customer](json.RawMessage(`[{"id":"c1","name":"Raj"}]`), "customers")
	require.NoError(t, err)
	assert.Len(t, bare, 1)

	wrapped, err := DecodeList[model.Customer](json.RawMessage(`{"customers":[{"id":"c1"},{"id":"c2"}],"total_customers":2}`), "customers")
	require.NoError(t, err)
	assert.Len(t, wrapped, 2)

	_, err = DecodeList[model.Customer](json.RawMessage(`{"other":[]}`), "customers")
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}
