// Package tripsapi is the gateway to the upstream trips provider.
package tripsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/metrics"
	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/telemetry"
)

const (
	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 5 * time.Second
	// DefaultMaxBodySize caps the response body read from the provider.
	DefaultMaxBodySize = 4 << 20

	apiKeyHeader = "x-api-key"
	maxBodyLog   = 512
)

// Client implements ports.TripGateway and ports.HealthProbe.
type Client struct {
	baseURL     string
	apiKey      string
	timeout     time.Duration
	maxBodySize int
	http        *fasthttp.Client
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBodySize overrides DefaultMaxBodySize.
func WithMaxBodySize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// New validates the endpoint and credential and builds a client. It never
// touches the network; a missing value yields *domain.ConfigurationError.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, &domain.ConfigurationError{Field: "base_url"}
	}
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &domain.ConfigurationError{Field: "base_url"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, &domain.ConfigurationError{Field: "api_key"}
	}

	c := &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, o := range opts {
		o(c)
	}
	c.http = &fasthttp.Client{
		Name:                "trip-planner",
		MaxConnsPerHost:     64,
		MaxIdleConnDuration: 30 * time.Second,
		MaxResponseBodySize: c.maxBodySize,
	}
	return c, nil
}

// tripRow is the provider's wire shape. Pointers detect missing fields.
type tripRow struct {
	ID          *string  `json:"id"`
	Origin      *string  `json:"origin"`
	Destination *string  `json:"destination"`
	Cost        *float64 `json:"cost"`
	Duration    *float64 `json:"duration"`
	Type        *string  `json:"type"`
	DisplayName *string  `json:"display_name"`
}

// FetchTrips performs one GET {base}/trips?origin=&destination= call.
// There are no retries; the whole call fails on the first error and a
// single bad row fails the whole call.
func (c *Client) FetchTrips(ctx context.Context, route domain.RouteKey) (trips []domain.Trip, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanUpstreamFetch)
	span.SetAttributes(
		attribute.String(telemetry.AttrOrigin, route.Origin),
		attribute.String(telemetry.AttrDestination, route.Destination),
	)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			trips, err = nil, &domain.UpstreamError{Err: fmt.Errorf("panic: %v", r)}
		}
		metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
		metrics.UpstreamRequests.WithLabelValues(outcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int(telemetry.AttrTripCount, len(trips)))
		}
		span.End()
	}()

	status, body, err := c.get(ctx, route)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(telemetry.AttrHTTPStatus, status))

	if status < 200 || status > 299 {
		return nil, &domain.UpstreamError{Status: status, Body: truncate(body, maxBodyLog)}
	}
	return decodeTrips(body)
}

// Check answers a health probe with one lightweight search. The payload must
// decode for the provider to count as up. It never feeds the result cache.
func (c *Client) Check(ctx context.Context, name string) domain.ProbeResult {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanUpstreamProbe)
	defer span.End()

	start := time.Now()
	status, body, err := c.get(ctx, domain.RouteKey{Origin: "SYD", Destination: "GRU"})
	detail := map[string]any{"latency": time.Since(start).String()}
	if err != nil {
		detail["error"] = err.Error()
		return domain.ProbeResult{Name: name, Status: domain.ProbeDown, Detail: detail}
	}
	detail["status_code"] = status
	if status < 200 || status > 299 {
		return domain.ProbeResult{Name: name, Status: domain.ProbeDown, Detail: detail}
	}
	if _, err := decodeTrips(body); err != nil {
		detail["error"] = err.Error()
		return domain.ProbeResult{Name: name, Status: domain.ProbeDown, Detail: detail}
	}
	return domain.ProbeResult{Name: name, Status: domain.ProbeUp, Detail: detail}
}

// get issues the request and returns status and a copy of the body.
func (c *Client) get(ctx context.Context, route domain.RouteKey) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, &domain.TransportError{Err: err}
	}

	q := url.Values{}
	q.Set("origin", route.Origin)
	q.Set("destination", route.Destination)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/trips?" + q.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, classify(err)
	}

	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, nil
}

// classify maps a client error to the gateway taxonomy. An oversized body is
// the provider's fault; anything else is a transport failure.
func classify(err error) error {
	if errors.Is(err, fasthttp.ErrBodyTooLarge) {
		return &domain.MalformedResponseError{Reason: "body exceeds size limit", Err: err}
	}
	if errors.Is(err, fasthttp.ErrTimeout) {
		return &domain.TransportError{Err: fmt.Errorf("timed out: %w", err)}
	}
	return &domain.TransportError{Err: err}
}

func decodeTrips(body []byte) ([]domain.Trip, error) {
	var rows []tripRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &domain.MalformedResponseError{Reason: "body is not a list of trips", Err: err}
	}
	// A JSON null decodes without error; [] does not leave rows nil.
	if rows == nil {
		return nil, &domain.MalformedResponseError{Reason: "body is not a list of trips"}
	}

	trips := make([]domain.Trip, 0, len(rows))
	for i, r := range rows {
		t, err := r.toDomain()
		if err != nil {
			return nil, &domain.MalformedResponseError{Reason: fmt.Sprintf("row %d", i), Err: err}
		}
		trips = append(trips, t)
	}
	return trips, nil
}

func (r tripRow) toDomain() (domain.Trip, error) {
	switch {
	case r.ID == nil || *r.ID == "":
		return domain.Trip{}, errors.New("missing id")
	case r.Origin == nil:
		return domain.Trip{}, errors.New("missing origin")
	case r.Destination == nil:
		return domain.Trip{}, errors.New("missing destination")
	case r.Cost == nil:
		return domain.Trip{}, errors.New("missing cost")
	case r.Duration == nil:
		return domain.Trip{}, errors.New("missing duration")
	case r.Type == nil:
		return domain.Trip{}, errors.New("missing type")
	case r.DisplayName == nil:
		return domain.Trip{}, errors.New("missing display_name")
	case *r.Cost < 0:
		return domain.Trip{}, fmt.Errorf("negative cost %v", *r.Cost)
	case *r.Duration < 0:
		return domain.Trip{}, fmt.Errorf("negative duration %v", *r.Duration)
	}

	return domain.Trip{
		ID:          *r.ID,
		Origin:      *r.Origin,
		Destination: *r.Destination,
		Cost:        *r.Cost,
		Duration:    *r.Duration,
		Type:        *r.Type,
		DisplayName: *r.DisplayName,
	}, nil
}

func outcome(err error) string {
	var (
		transport *domain.TransportError
		malformed *domain.MalformedResponseError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &malformed):
		return "malformed"
	default:
		return "upstream"
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
