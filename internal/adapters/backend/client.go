// Package backend talks to the rental REST backend over fasthttp.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/pkg/metrics"
	"github.com/samirrijal/unirenta/internal/pkg/telemetry"
)

// Error is a non-2xx answer from the backend. It carries the decoded error
// payload so callers can classify it.
type Error struct {
	Op      string
	Status  int
	payload domain.ErrorPayload
}

func (e *Error) Error() string {
	msg := e.payload.Message
	if msg == "" {
		msg = e.payload.TopMessage
	}
	return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.Status, msg)
}

// Payload implements domain.RemoteError.
func (e *Error) Payload() domain.ErrorPayload { return e.payload }

// Unwrap maps 404 answers to domain.ErrNotFound.
func (e *Error) Unwrap() error {
	if e.Status == fasthttp.StatusNotFound {
		return domain.ErrNotFound
	}
	return nil
}

// envelope is the {success, cantidad, data} wrapper used by list endpoints.
type envelope struct {
	Success *bool           `json:"success"`
	Count   *int            `json:"cantidad"`
	Data    json.RawMessage `json:"data"`
}

// Client is a thin JSON client for the rental backend.
type Client struct {
	base    string
	timeout time.Duration
	http    *fasthttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying fasthttp client.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "unirenta",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// do sends req and returns the response body on 2xx. prepare fills in the
// request; the URI is set from path.
func (c *Client) do(ctx context.Context, op, method, path string, prepare func(req *fasthttp.Request)) ([]byte, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "backend."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if prepare != nil {
		prepare(req)
	}
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", req.URI().String()),
	)

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	metrics.BackendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		metrics.BackendErrors.WithLabelValues(op, "transport").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, fmt.Errorf("backend %s: %w", op, err)
	}

	status := resp.StatusCode()
	span.SetAttributes(attribute.Int("http.status_code", status))
	// Copy: the body buffer goes back to the pool with resp.
	body := append([]byte(nil), resp.Body()...)

	if status < 200 || status >= 300 {
		berr := &Error{Op: op, Status: status, payload: domain.DecodeErrorPayload(status, body)}
		metrics.BackendErrors.WithLabelValues(op, kindLabel(berr.payload.Kind)).Inc()
		span.SetStatus(codes.Error, berr.Error())
		return nil, berr
	}
	return body, nil
}

// decodeData unwraps the data field of an envelope into out. Bare JSON
// arrays and objects are accepted too. A 2xx envelope with success=false is
// still reported as an Error.
func decodeData(op string, body []byte, out any) error {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("backend %s: decode: %w", op, err)
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("backend %s: decode: %w", op, err)
	}
	if env.Success != nil && !*env.Success {
		return &Error{Op: op, Status: fasthttp.StatusOK, payload: domain.DecodeErrorPayload(fasthttp.StatusOK, body)}
	}
	data := env.Data
	if len(data) == 0 {
		data = body
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("backend %s: decode data: %w", op, err)
	}
	return nil
}

func kindLabel(k domain.ErrorKind) string {
	if k == domain.ErrorKindUnset {
		return "untyped"
	}
	return strings.ToLower(string(k))
}
