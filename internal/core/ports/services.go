package ports

import (
	"context"

	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
)

// ResultCache memoizes raw gateway results per route.
type ResultCache interface {
	Get(route domain.RouteKey) (domain.CacheEntry, bool)
	Put(route domain.RouteKey, trips []domain.Trip)
}

// EventPublisher publishes saved-trip events to a message broker.
type EventPublisher interface {
	PublishSavedTripEvent(ctx context.Context, event *domain.SavedTripEvent) error
}

// HealthProbe answers an informational reachability check.
type HealthProbe interface {
	Check(ctx context.Context, name string) domain.ProbeResult
}
