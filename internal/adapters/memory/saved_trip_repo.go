package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
)

// SavedTripRepository implements ports.SavedTripRepository in process
// memory. Data does not survive a restart.
type SavedTripRepository struct {
	mu        sync.RWMutex
	bySession map[string][]domain.SavedTrip
}

func NewSavedTripRepository() *SavedTripRepository {
	return &SavedTripRepository{bySession: make(map[string][]domain.SavedTrip)}
}

func (r *SavedTripRepository) Save(_ context.Context, t *domain.SavedTrip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.bySession[t.SessionID] = append(r.bySession[t.SessionID], *t)
	return nil
}

func (r *SavedTripRepository) ListBySession(_ context.Context, sessionID string) ([]domain.SavedTrip, error) {
	r.mu.RLock()
	stored := r.bySession[sessionID]
	out := make([]domain.SavedTrip, len(stored))
	copy(out, stored)
	r.mu.RUnlock()

	// Stored in insertion order; reversing first keeps later saves ahead
	// when timestamps collide.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, nil
}

func (r *SavedTripRepository) DeleteByID(_ context.Context, id, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	trips := r.bySession[sessionID]
	for i := range trips {
		if trips[i].ID != id {
			continue
		}
		r.bySession[sessionID] = append(trips[:i:i], trips[i+1:]...)
		if len(r.bySession[sessionID]) == 0 {
			delete(r.bySession, sessionID)
		}
		return nil
	}
	return domain.ErrNotFound
}
