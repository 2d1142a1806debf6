package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
)

// SavedTripRepo implements ports.SavedTripRepository.
type SavedTripRepo struct {
	db *DB
}

func NewSavedTripRepo(db *DB) *SavedTripRepo {
	return &SavedTripRepo{db: db}
}

func (r *SavedTripRepo) Save(ctx context.Context, t *domain.SavedTrip) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO saved_trips (session_id, user_id, trip_id, origin, destination, cost, duration, type, display_name, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id::text
	`, t.SessionID, t.UserID, t.TripID, t.Origin, t.Destination, t.Cost, t.Duration, t.Type, t.DisplayName, t.SavedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert saved trip: %w", err)
	}
	return nil
}

func (r *SavedTripRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.SavedTrip, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, session_id, user_id, trip_id, origin, destination, cost, duration, type, display_name, saved_at
		FROM saved_trips
		WHERE session_id = $1
		ORDER BY saved_at DESC, id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []domain.SavedTrip{}
	for rows.Next() {
		var t domain.SavedTrip
		if err := rows.Scan(
			&t.ID, &t.SessionID, &t.UserID, &t.TripID, &t.Origin, &t.Destination,
			&t.Cost, &t.Duration, &t.Type, &t.DisplayName, &t.SavedAt,
		); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (r *SavedTripRepo) DeleteByID(ctx context.Context, id, sessionID string) error {
	// A malformed id cannot match any row; skip the cast error.
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}

	var deleted string
	err := r.db.Pool.QueryRow(ctx, `
		DELETE FROM saved_trips WHERE id = $1::uuid AND session_id = $2
		RETURNING id::text
	`, id, sessionID).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
