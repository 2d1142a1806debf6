package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/wiedertv/BizAway-code-challenge/internal/adapters/memory"
	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
	"github.com/wiedertv/BizAway-code-challenge/internal/core/usecases"
)

// --- Mock EventPublisher ---

type mockPublisher struct {
	events    []domain.SavedTripEvent
	publishFn func(ctx context.Context, ev *domain.SavedTripEvent) error
}

func (m *mockPublisher) PublishSavedTripEvent(ctx context.Context, ev *domain.SavedTripEvent) error {
	m.events = append(m.events, *ev)
	if m.publishFn != nil {
		return m.publishFn(ctx, ev)
	}
	return nil
}

var snapshot = domain.TripSnapshot{
	TripID:      "a749c866-7928-4d08-9d5c-a6821a583d1a",
	Origin:      "SYD",
	Destination: "GRU",
	Cost:        625,
	Duration:    5,
	Type:        "flight",
	DisplayName: "from SYD to GRU by flight",
}

func TestSavedTripService_SaveListDelete(t *testing.T) {
	ctx := context.Background()
	pub := &mockPublisher{}
	svc := usecases.NewSavedTripService(memory.NewSavedTripRepository(), pub)

	saved, err := svc.Save(ctx, snapshot, "session-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID == "" || saved.SavedAt.IsZero() || saved.UserID != nil {
		t.Errorf("unexpected saved trip %+v", saved)
	}
	if saved.TripID != snapshot.TripID || saved.Cost != 625 {
		t.Errorf("snapshot fields not copied: %+v", saved)
	}

	list, err := svc.ListBySession(ctx, "session-1")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected 1 trip, got %d (%v)", len(list), err)
	}
	other, _ := svc.ListBySession(ctx, "session-2")
	if other == nil || len(other) != 0 {
		t.Errorf("expected empty non-nil list for another session, got %v", other)
	}

	if err := svc.Delete(ctx, saved.ID, "session-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong session, got %v", err)
	}
	if err := svc.Delete(ctx, saved.ID, "session-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	if pub.events[0].Action != usecases.EventSaved || pub.events[1].Action != usecases.EventDeleted {
		t.Errorf("unexpected events %+v", pub.events)
	}
	if pub.events[1].SessionID != "session-1" || pub.events[1].TripID != saved.ID {
		t.Errorf("delete event mismatch %+v", pub.events[1])
	}
}

func TestSavedTripService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewSavedTripService(memory.NewSavedTripRepository(), nil)

	if _, err := svc.Save(ctx, snapshot, "  "); !errors.Is(err, domain.ErrMissingSession) {
		t.Errorf("expected ErrMissingSession, got %v", err)
	}

	bad := snapshot
	bad.Cost = -1
	_, err := svc.Save(ctx, bad, "s")
	if !errors.Is(err, domain.ErrInvalidTrip) {
		t.Fatalf("expected ErrInvalidTrip, got %v", err)
	}
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "cost" {
		t.Errorf("expected cost validation error, got %v", err)
	}

	if _, err := svc.ListBySession(ctx, ""); !errors.Is(err, domain.ErrMissingSession) {
		t.Errorf("expected ErrMissingSession on list, got %v", err)
	}
	if err := svc.Delete(ctx, "", "s"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty id, got %v", err)
	}
}

func TestSavedTripService_PublishFailureIsNotFatal(t *testing.T) {
	pub := &mockPublisher{publishFn: func(ctx context.Context, ev *domain.SavedTripEvent) error {
		return errors.New("nats down")
	}}
	svc := usecases.NewSavedTripService(memory.NewSavedTripRepository(), pub)

	if _, err := svc.Save(context.Background(), snapshot, "s"); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}
}

func TestNewSessionToken(t *testing.T) {
	a, b := usecases.NewSessionToken(), usecases.NewSessionToken()
	if a == "" || a == b {
		t.Errorf("expected distinct tokens, got %q and %q", a, b)
	}
}
