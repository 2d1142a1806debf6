package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
	"github.com/wiedertv/BizAway-code-challenge/internal/core/ports"
	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/logging"
	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/metrics"
)

const (
	EventSaved   = "saved"
	EventDeleted = "deleted"
)

// SavedTripService keeps session-scoped copies of trips a caller chose.
type SavedTripService struct {
	repo      ports.SavedTripRepository
	publisher ports.EventPublisher // optional
	now       func() time.Time
}

// NewSavedTripService creates a new SavedTripService. publisher may be nil.
func NewSavedTripService(repo ports.SavedTripRepository, publisher ports.EventPublisher) *SavedTripService {
	return &SavedTripService{repo: repo, publisher: publisher, now: time.Now}
}

// NewSessionToken returns a fresh opaque session token.
func NewSessionToken() string {
	return uuid.NewString()
}

// Save stores a copy of snap under sessionID.
func (s *SavedTripService) Save(ctx context.Context, snap domain.TripSnapshot, sessionID string) (*domain.SavedTrip, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.ErrMissingSession
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	trip := &domain.SavedTrip{
		SessionID:   sessionID,
		TripID:      snap.TripID,
		Origin:      strings.ToUpper(snap.Origin),
		Destination: strings.ToUpper(snap.Destination),
		Cost:        snap.Cost,
		Duration:    snap.Duration,
		Type:        snap.Type,
		DisplayName: snap.DisplayName,
		SavedAt:     s.now().UTC(),
	}
	if err := s.repo.Save(ctx, trip); err != nil {
		return nil, fmt.Errorf("save trip: %w", err)
	}
	metrics.SavedTrips.WithLabelValues(EventSaved).Inc()

	s.publish(ctx, &domain.SavedTripEvent{
		Action:    EventSaved,
		SessionID: sessionID,
		TripID:    trip.ID,
		Trip:      trip,
		At:        trip.SavedAt,
	})
	return trip, nil
}

// ListBySession returns the session's trips, newest first.
func (s *SavedTripService) ListBySession(ctx context.Context, sessionID string) ([]domain.SavedTrip, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.ErrMissingSession
	}
	trips, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list saved trips: %w", err)
	}
	if trips == nil {
		trips = []domain.SavedTrip{}
	}
	return trips, nil
}

// Delete removes a trip only if it belongs to sessionID.
func (s *SavedTripService) Delete(ctx context.Context, id, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.ErrMissingSession
	}
	if strings.TrimSpace(id) == "" {
		return domain.ErrNotFound
	}
	if err := s.repo.DeleteByID(ctx, id, sessionID); err != nil {
		return err
	}
	metrics.SavedTrips.WithLabelValues(EventDeleted).Inc()

	s.publish(ctx, &domain.SavedTripEvent{
		Action:    EventDeleted,
		SessionID: sessionID,
		TripID:    id,
		At:        s.now().UTC(),
	})
	return nil
}

// publish is best effort: the write already succeeded.
func (s *SavedTripService) publish(ctx context.Context, ev *domain.SavedTripEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSavedTripEvent(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish saved trip event failed",
			"action", ev.Action, "saved_trip_id", ev.TripID, "error", err)
	}
}
