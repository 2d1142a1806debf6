package domain

import (
	"strings"
	"time"
)

// Trip is a single itinerary offered by the upstream provider.
// Values are created by the gateway and never mutated afterwards.
type Trip struct {
	ID          string  `json:"id"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Cost        float64 `json:"cost"`
	Duration    float64 `json:"duration"`
	Type        string  `json:"type"`
	DisplayName string  `json:"display_name"`
}

// RouteKey identifies an ordered origin/destination pair.
// A→B and B→A are distinct keys.
type RouteKey struct {
	Origin      string
	Destination string
}

func (k RouteKey) String() string {
	return k.Origin + "-" + k.Destination
}

// SearchCriteria is the input of a trip search.
type SearchCriteria struct {
	Origin      string
	Destination string
	Mode        RankingMode
}

// NewSearchCriteria normalises codes to upper case.
func NewSearchCriteria(origin, destination string, mode RankingMode) SearchCriteria {
	return SearchCriteria{
		Origin:      strings.ToUpper(strings.TrimSpace(origin)),
		Destination: strings.ToUpper(strings.TrimSpace(destination)),
		Mode:        mode,
	}
}

// Route returns the cache key for the criteria.
func (c SearchCriteria) Route() RouteKey {
	return RouteKey{Origin: c.Origin, Destination: c.Destination}
}

// Validate checks both codes against the allow-list and the mode against
// the known ranking modes. Origin may equal destination.
func (c SearchCriteria) Validate() error {
	if !IsSupportedIATA(c.Origin) {
		return &InvalidCriteriaError{Field: "origin", Value: c.Origin}
	}
	if !IsSupportedIATA(c.Destination) {
		return &InvalidCriteriaError{Field: "destination", Value: c.Destination}
	}
	if _, ok := strategies[c.Mode]; !ok {
		return &InvalidCriteriaError{Field: "sort_by", Value: string(c.Mode)}
	}
	return nil
}

// CacheEntry is an unranked gateway result held by the result cache.
type CacheEntry struct {
	Route      RouteKey
	Trips      []Trip
	InsertedAt time.Time
	ExpiresAt  time.Time
}

// TripSnapshot is the subset of a Trip a caller asks to keep.
type TripSnapshot struct {
	TripID      string  `json:"trip_id"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Cost        float64 `json:"cost"`
	Duration    float64 `json:"duration"`
	Type        string  `json:"type"`
	DisplayName string  `json:"display_name"`
}

// Validate reports the first missing or out-of-range field.
func (s TripSnapshot) Validate() error {
	switch {
	case strings.TrimSpace(s.TripID) == "":
		return &ValidationError{Field: "trip_id", Reason: "is required"}
	case strings.TrimSpace(s.Origin) == "":
		return &ValidationError{Field: "origin", Reason: "is required"}
	case strings.TrimSpace(s.Destination) == "":
		return &ValidationError{Field: "destination", Reason: "is required"}
	case s.Cost < 0:
		return &ValidationError{Field: "cost", Reason: "must not be negative"}
	case s.Duration < 0:
		return &ValidationError{Field: "duration", Reason: "must not be negative"}
	case strings.TrimSpace(s.Type) == "":
		return &ValidationError{Field: "type", Reason: "is required"}
	case strings.TrimSpace(s.DisplayName) == "":
		return &ValidationError{Field: "display_name", Reason: "is required"}
	}
	return nil
}

// SavedTrip is a session-scoped copy of a trip the caller chose to keep.
type SavedTrip struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	UserID      *string   `json:"user_id"` // reserved for authenticated users
	TripID      string    `json:"trip_id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Cost        float64   `json:"cost"`
	Duration    float64   `json:"duration"`
	Type        string    `json:"type"`
	DisplayName string    `json:"display_name"`
	SavedAt     time.Time `json:"saved_at"`
}

// SavedTripEvent is published when a saved trip is created or removed.
type SavedTripEvent struct {
	Action    string     `json:"action"` // "saved" | "deleted"
	SessionID string     `json:"-"`
	TripID    string     `json:"saved_trip_id"`
	Trip      *SavedTrip `json:"trip,omitempty"`
	At        time.Time  `json:"at"`
}

// ProbeStatus is the outcome of a health probe.
type ProbeStatus string

const (
	ProbeUp   ProbeStatus = "up"
	ProbeDown ProbeStatus = "down"
)

// ProbeResult is what a HealthProbe reports for one dependency.
type ProbeResult struct {
	Name   string         `json:"name"`
	Status ProbeStatus    `json:"status"`
	Detail map[string]any `json:"detail,omitempty"`
}
