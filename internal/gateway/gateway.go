// Package gateway is the only component that talks to the business API.
// Every failure comes back as *model.UnavailableError so callers can take
// the fallback path without knowing why the call failed.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"bizdash/internal/config"
	"bizdash/internal/connectivity"
	"bizdash/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	apiMediaType    = "application/json"
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 512
)

// TokenSource returns the opaque session token, or "" when signed out.
type TokenSource func() string

type Gateway struct {
	http    *resty.Client
	baseURL string
	monitor *connectivity.Monitor
	token   TokenSource
	logger  *zap.Logger
}

func New(cfg config.Config, monitor *connectivity.Monitor, logger *zap.Logger) *Gateway {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", apiMediaType).
		SetHeader("Content-Type", apiMediaType).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("gateway")
	if baseURL == "" {
		logger.Warn("base URL is not configured; running in demo mode")
	}

	return &Gateway{
		http:    httpClient,
		baseURL: baseURL,
		monitor: monitor,
		logger:  logger,
	}
}

// SetTokenSource wires the session token into outgoing requests.
func (g *Gateway) SetTokenSource(src TokenSource) {
	g.token = src
}

func (g *Gateway) Configured() bool {
	return g.baseURL != ""
}

// Call issues one request against endpoint, relative to the base URL. body
// is JSON-encoded when non-nil. A 2xx response yields its raw JSON payload;
// anything else yields *model.UnavailableError.
func (g *Gateway) Call(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	if g.baseURL == "" {
		return nil, g.fail(method, endpoint, "", 0, model.ErrNetworkUnavailable)
	}

	requestID := uuid.NewString()
	req := g.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, requestID)
	if body != nil {
		req.SetBody(body)
	}
	if g.token != nil {
		if token := g.token(); token != "" {
			req.SetAuthToken(token)
		}
	}

	start := time.Now()
	resp, err := req.Execute(method, endpoint)
	if err != nil {
		// the caller gave up; says nothing about the server
		if ctxErr := ctx.Err(); ctxErr != nil {
			g.logger.Debug("api call cancelled",
				zap.String("method", method),
				zap.String("endpoint", endpoint),
				zap.String("request_id", requestID),
			)
			return nil, ctxErr
		}
		return nil, g.fail(method, endpoint, requestID, time.Since(start), model.ErrNetworkUnavailable, zap.Error(err))
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, g.fail(method, endpoint, requestID, time.Since(start), errorFromResponse(resp))
	}

	payload := json.RawMessage(strings.TrimSpace(string(resp.Body())))
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	if !json.Valid(payload) {
		return nil, g.fail(method, endpoint, requestID, time.Since(start),
			&model.ValidationError{Field: "body", Reason: "malformed JSON"})
	}

	g.report(true)
	g.logger.Debug("api call",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return payload, nil
}

func (g *Gateway) fail(method, endpoint, requestID string, elapsed time.Duration, reason error, fields ...zap.Field) error {
	g.report(false)
	fields = append(fields,
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", elapsed),
		zap.NamedError("reason", reason),
	)
	g.logger.Warn("api unavailable", fields...)
	return &model.UnavailableError{Reason: reason}
}

func (g *Gateway) report(ok bool) {
	if g.monitor != nil {
		g.monitor.Report(ok)
	}
}

type errorBody struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
	Detail any    `json:"detail"`
}

func errorFromResponse(resp *resty.Response) error {
	body := strings.TrimSpace(resp.String())
	status := resp.StatusCode()

	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		var eb errorBody
		if err := json.Unmarshal([]byte(body), &eb); err == nil {
			switch {
			case eb.Field != "" || eb.Reason != "":
				return &model.ValidationError{Field: eb.Field, Reason: eb.Reason}
			case eb.Detail != nil:
				return &model.ValidationError{Reason: detailString(eb.Detail)}
			}
		}
	}

	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &model.ServerError{Status: status, Body: body}
}

func detailString(detail any) string {
	if s, ok := detail.(string); ok {
		return s
	}
	encoded, err := json.Marshal(detail)
	if err != nil {
		return "invalid request"
	}
	return string(encoded)
}

// Decode unmarshals a payload; a payload that does not fit T is reported
// as a validation error.
func Decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return out, verr
		}
		return out, &model.ValidationError{Field: "body", Reason: err.Error()}
	}
	return out, nil
}

// DecodeList accepts either a bare JSON array or an object that wraps the
// array under key or "items".
func DecodeList[T any](raw json.RawMessage, key string) ([]T, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		return Decode[[]T](raw)
	}

	wrapper, err := Decode[map[string]json.RawMessage](raw)
	if err != nil {
		return nil, err
	}
	for _, k := range []string{key, "items"} {
		if inner, ok := wrapper[k]; ok {
			return Decode[[]T](inner)
		}
	}
	return nil, &model.ValidationError{Field: key, Reason: "missing list in payload"}
}
