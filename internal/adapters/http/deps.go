package http

import (
	natsadapter "github.com/wiedertv/BizAway-code-challenge/internal/adapters/nats"
	"github.com/wiedertv/BizAway-code-challenge/internal/adapters/postgres"
	"github.com/wiedertv/BizAway-code-challenge/internal/adapters/valkey"
	"github.com/wiedertv/BizAway-code-challenge/internal/core/ports"
	"github.com/wiedertv/BizAway-code-challenge/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. Only Search and
// SavedTrips are required; the rest are nil when not configured.
type Dependencies struct {
	Search     *usecases.SearchService
	SavedTrips *usecases.SavedTripService
	TripsProbe ports.HealthProbe
	Events     *natsadapter.Subscriber
	DB         *postgres.DB
	Limiter    *valkey.Storage
	Version    string
}

// RouterConfig carries the middleware knobs from configuration.
type RouterConfig struct {
	CORSOrigins     string
	RateLimitMax    int
	RateLimitWindow int // seconds
}
