package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tripplanner/internal/domain"
	"tripplanner/internal/infra"
	"tripplanner/internal/sqlinline"
)

// TripRepositoryPG implements domain.TripRepository on a JSONB-backed
// trips table.
type TripRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewTripRepository creates a new TripRepositoryPG.
func NewTripRepository(sql infra.SQLExecutor) *TripRepositoryPG {
	return &TripRepositoryPG{sql: sql}
}

// Create stores a trip and returns it with the generated id and timestamps.
func (r *TripRepositoryPG) Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	selection, err := json.Marshal(trip.UserSelection)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create trip", Err: fmt.Errorf("encode selection: %w", err)}
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertTrip, trip.UserEmail, selection, nullableJSON(trip.TripData))
	created, err := scanTrip(row)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create trip", Err: err}
	}
	return created, nil
}

// GetByID returns domain.ErrNotFound for unknown or malformed ids.
func (r *TripRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	trip, err := scanTrip(r.sql.QueryRow(ctx, sqlinline.QSelectTripByID, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "get trip", Err: err}
	}
	return trip, nil
}

// Update applies the non-nil fields of patch, refreshes updated_at and
// returns the stored row.
func (r *TripRepositoryPG) Update(ctx context.Context, id string, patch domain.TripPatch) (*domain.Trip, error) {
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	var selection any
	if patch.UserSelection != nil {
		raw, err := json.Marshal(patch.UserSelection)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "update trip", Err: fmt.Errorf("encode selection: %w", err)}
		}
		selection = raw
	}
	var email any
	if patch.UserEmail != nil {
		email = *patch.UserEmail
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateTrip, id, selection, nullableJSON(patch.TripData), email)
	trip, err := scanTrip(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "update trip", Err: err}
	}
	return trip, nil
}

// Delete removes a trip. Deleting a missing trip is not an error.
func (r *TripRepositoryPG) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return nil
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QDeleteTrip, id); err != nil {
		return &domain.PersistenceError{Op: "delete trip", Err: err}
	}
	return nil
}

// ListByUser returns the user's trips newest first; never nil.
func (r *TripRepositoryPG) ListByUser(ctx context.Context, email string) ([]domain.Trip, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListTripsByUser, email)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list trips", Err: err}
	}
	defer rows.Close()

	trips := make([]domain.Trip, 0)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "list trips", Err: err}
		}
		trips = append(trips, *trip)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "list trips", Err: err}
	}
	return trips, nil
}

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var (
		t         domain.Trip
		selection []byte
		data      []byte
	)
	if err := row.Scan(&t.ID, &t.UserEmail, &selection, &data, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if len(selection) > 0 {
		if err := json.Unmarshal(selection, &t.UserSelection); err != nil {
			return nil, fmt.Errorf("decode selection: %w", err)
		}
	}
	if len(data) > 0 {
		t.TripData = json.RawMessage(data)
	} else {
		t.TripData = json.RawMessage(`{}`)
	}
	return &t, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

var _ domain.TripRepository = (*TripRepositoryPG)(nil)
