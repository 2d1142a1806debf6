package ports

import (
	"context"

	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
)

// TripGateway fetches unranked trips for a route from the upstream provider.
// Failures are one of ConfigurationError, TransportError, UpstreamError or
// MalformedResponseError.
type TripGateway interface {
	FetchTrips(ctx context.Context, route domain.RouteKey) ([]domain.Trip, error)
}

// SavedTripRepository persists session-scoped saved trips.
type SavedTripRepository interface {
	// Save stores trip and fills in its ID.
	Save(ctx context.Context, trip *domain.SavedTrip) error
	// ListBySession returns trips newest first.
	ListBySession(ctx context.Context, sessionID string) ([]domain.SavedTrip, error)
	// DeleteByID returns domain.ErrNotFound unless id belongs to sessionID.
	DeleteByID(ctx context.Context, id, sessionID string) error
}
