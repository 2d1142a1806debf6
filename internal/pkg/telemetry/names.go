package telemetry

// Tracer and span names used for instrumentation.
const (
	TracerName = "github.com/wiedertv/BizAway-code-challenge"

	SpanSearch        = "trips.search"
	SpanUpstreamFetch = "tripsapi.fetch"
	SpanUpstreamProbe = "tripsapi.probe"

	// Span attributes
	AttrOrigin      = "trip.origin"
	AttrDestination = "trip.destination"
	AttrRankingMode = "trip.ranking_mode"
	AttrCacheHit    = "trip.cache_hit"
	AttrTripCount   = "trip.count"
	AttrHTTPStatus  = "http.status_code"
)
