package domain

import "context"

// TripRepository persists trips.
type TripRepository interface {
	Create(ctx context.Context, trip *Trip) (*Trip, error)
	GetByID(ctx context.Context, id string) (*Trip, error)
	Update(ctx context.Context, id string, patch TripPatch) (*Trip, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, email string) ([]Trip, error)
}

// UserRepository persists users keyed by email.
type UserRepository interface {
	Upsert(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	IncrementTripCount(ctx context.Context, email string) (int, error)
}
