package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
	"github.com/wiedertv/BizAway-code-challenge/internal/core/ports"
	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/logging"
	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/metrics"
	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/telemetry"
)

// SearchService is the entry point for trip searches. It validates the
// criteria, serves raw results from the cache or the gateway and ranks them
// per call. Concurrent misses on one route share a single gateway call.
type SearchService struct {
	gateway ports.TripGateway
	cache   ports.ResultCache
	flights singleflight.Group
}

// NewSearchService creates a new SearchService.
func NewSearchService(gateway ports.TripGateway, cache ports.ResultCache) *SearchService {
	return &SearchService{gateway: gateway, cache: cache}
}

// Search returns the trips for criteria ranked by its mode. Invalid criteria
// fail with *domain.InvalidCriteriaError before the cache or the network is
// touched; every other failure is logged and returned as *domain.SearchError.
func (s *SearchService) Search(ctx context.Context, criteria domain.SearchCriteria) (trips []domain.Trip, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSearch, trace.WithAttributes(
		attribute.String(telemetry.AttrOrigin, criteria.Origin),
		attribute.String(telemetry.AttrDestination, criteria.Destination),
		attribute.String(telemetry.AttrRankingMode, criteria.Mode.String()),
	))
	defer span.End()

	if err := criteria.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	route := criteria.Route()

	defer func() {
		if r := recover(); r != nil {
			trips, err = nil, s.fail(ctx, span, route, fmt.Errorf("search panic: %v", r))
		}
	}()

	raw, hit, err := s.load(ctx, route)
	if err != nil {
		return nil, s.fail(ctx, span, route, err)
	}

	ranked := criteria.Mode.Strategy().Sort(raw)
	span.SetAttributes(
		attribute.Bool(telemetry.AttrCacheHit, hit),
		attribute.Int(telemetry.AttrTripCount, len(ranked)),
	)
	return ranked, nil
}

// load returns the raw trips for route and whether they came from the cache.
func (s *SearchService) load(ctx context.Context, route domain.RouteKey) ([]domain.Trip, bool, error) {
	if entry, ok := s.cache.Get(route); ok {
		metrics.CacheHits.WithLabelValues("search").Inc()
		return entry.Trips, true, nil
	}
	metrics.CacheMisses.WithLabelValues("search").Inc()

	// The flight outlives any single waiter, so it must not inherit a
	// waiter's cancellation. The gateway's own timeout bounds it.
	flightCtx := context.WithoutCancel(ctx)
	// Only the leader's closure runs; led is read after the result arrives.
	led := false
	ch := s.flights.DoChan(route.String(), func() (any, error) {
		led = true
		return s.fetch(flightCtx, route)
	})

	select {
	case res := <-ch:
		if res.Shared && !led {
			metrics.SearchCoalesced.Inc()
		}
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]domain.Trip), false, nil
	case <-ctx.Done():
		return nil, false, &domain.TransportError{Err: ctx.Err()}
	}
}

// fetch runs inside a flight. It re-checks the cache so a caller that missed
// just before another flight stored the route does not call upstream again.
func (s *SearchService) fetch(ctx context.Context, route domain.RouteKey) (trips []domain.Trip, err error) {
	defer func() {
		if r := recover(); r != nil {
			trips, err = nil, &domain.UpstreamError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if entry, ok := s.cache.Get(route); ok {
		return entry.Trips, nil
	}

	trips, err = s.gateway.FetchTrips(ctx, route)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	s.cache.Put(route, trips)
	return trips, nil
}

func (s *SearchService) fail(ctx context.Context, span trace.Span, route domain.RouteKey, cause error) error {
	kind := failureKind(cause)
	metrics.SearchFailures.WithLabelValues(kind).Inc()
	span.RecordError(cause)
	span.SetStatus(codes.Error, domain.ErrSearchFailed.Error())

	attrs := []any{
		slog.String("route", route.String()),
		slog.String("kind", kind),
		slog.Any("error", cause),
	}
	var upErr *domain.UpstreamError
	if errors.As(cause, &upErr) && upErr.Status != 0 {
		attrs = append(attrs, slog.Int("upstream_status", upErr.Status), slog.String("upstream_body", upErr.Body))
	}
	logging.FromContext(ctx).Error("trip search failed", attrs...)

	return &domain.SearchError{Cause: cause}
}

func failureKind(err error) string {
	var (
		cfgErr    *domain.ConfigurationError
		transport *domain.TransportError
		upstream  *domain.UpstreamError
		malformed *domain.MalformedResponseError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &malformed):
		return "malformed"
	case errors.As(err, &upstream):
		return "upstream"
	default:
		return "internal"
	}
}
