// Package service orchestrates validation, generation and persistence for
// trips and users.
package service

import (
	"context"
	"encoding/json"
	"errors"

	"tripplanner/internal/domain"
	"tripplanner/internal/infra"
	"tripplanner/internal/itinerary"
	"tripplanner/internal/validation"
)

// Generator produces itinerary JSON for a selection.
type Generator interface {
	Generate(ctx context.Context, sel domain.TripSelection, locale string) (json.RawMessage, error)
}

// TripService implements the trip use cases.
type TripService struct {
	trips     domain.TripRepository
	users     domain.UserRepository
	generator Generator
	logger    *infra.Logger
}

// NewTripService wires a TripService. logger may be nil.
func NewTripService(trips domain.TripRepository, users domain.UserRepository, generator Generator, logger *infra.Logger) *TripService {
	if logger == nil {
		l := infra.NopLogger()
		logger = &l
	}
	return &TripService{trips: trips, users: users, generator: generator, logger: logger}
}

// Create validates the request, generates a plan unless the client sent
// one, stores the trip and bumps the owner's trip count. A failed count
// update is logged and does not fail the call.
func (s *TripService) Create(ctx context.Context, in validation.CreateTripInput, locale string) (*domain.Trip, error) {
	in, err := validation.ValidateTrip(in)
	if err != nil {
		return nil, err
	}
	sel := *in.UserSelection

	data := in.TripData
	if len(data) > 0 {
		if _, err := itinerary.Inspect(data); err != nil {
			s.logger.Warn().Err(err).Str("trip", sel.Summary()).Msg("supplied tripData has no itinerary, generating instead")
			data = nil
		}
	}
	if len(data) == 0 {
		data, err = s.generate(ctx, sel, locale)
		if err != nil {
			return nil, err
		}
	}

	trip, err := s.trips.Create(ctx, &domain.Trip{
		UserSelection: sel,
		TripData:      data,
		UserEmail:     in.UserEmail,
	})
	if err != nil {
		return nil, err
	}

	count, err := s.users.IncrementTripCount(ctx, in.UserEmail)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("trip_id", trip.ID).
			Str("user_email", in.UserEmail).
			Msg("trip stored but trip count was not incremented")
	} else {
		s.logger.Info().
			Str("trip_id", trip.ID).
			Str("trip", sel.Summary()).
			Int("trip_count", count).
			Msg("trip created")
	}
	return trip, nil
}

// Generate validates a selection and returns a generated plan without
// storing anything.
func (s *TripService) Generate(ctx context.Context, sel *domain.TripSelection, locale string) (json.RawMessage, error) {
	valid, err := validation.ValidateSelection(sel)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, valid, locale)
}

func (s *TripService) generate(ctx context.Context, sel domain.TripSelection, locale string) (json.RawMessage, error) {
	if s.generator == nil {
		return nil, &domain.UpstreamError{Op: "generate itinerary", Err: errors.New("generator is not configured")}
	}
	return s.generator.Generate(ctx, sel, locale)
}

// Get returns a trip by id.
func (s *TripService) Get(ctx context.Context, id string) (*domain.Trip, error) {
	return s.trips.GetByID(ctx, id)
}

// ListByUser returns the user's trips, newest first.
func (s *TripService) ListByUser(ctx context.Context, email string) ([]domain.Trip, error) {
	return s.trips.ListByUser(ctx, validation.NormalizeEmail(email))
}

// Update applies a validated partial update. An empty patch still refreshes
// updatedAt.
func (s *TripService) Update(ctx context.Context, id string, in validation.UpdateTripInput) (*domain.Trip, error) {
	patch, err := validation.ValidateTripUpdate(in)
	if err != nil {
		return nil, err
	}
	return s.trips.Update(ctx, id, patch)
}

// Delete removes a trip. Missing trips are not an error.
func (s *TripService) Delete(ctx context.Context, id string) error {
	return s.trips.Delete(ctx, id)
}
