package handlers

import (
	"net/http"

	"tripplanner/internal/domain"
	"tripplanner/internal/middleware"
	"tripplanner/internal/validation"

	"github.com/go-chi/chi/v5"
)

func (a *App) TripsCreate(w http.ResponseWriter, r *http.Request) {
	var in validation.CreateTripInput
	if err := decode(w, r, &in); err != nil {
		a.writeError(w, r, err, "Failed to create trip")
		return
	}
	trip, err := a.Trips.Create(r.Context(), in, middleware.LocaleFromContext(r.Context()))
	if err != nil {
		a.writeError(w, r, err, "Failed to create trip")
		return
	}
	a.ok(w, http.StatusCreated, "Trip created successfully", trip)
}

func (a *App) TripGet(w http.ResponseWriter, r *http.Request) {
	trip, err := a.Trips.Get(r.Context(), chi.URLParam(r, "tripId"))
	if err != nil {
		a.writeError(w, r, err, "Trip not found")
		return
	}
	a.ok(w, http.StatusOK, "", trip)
}

func (a *App) TripsByUser(w http.ResponseWriter, r *http.Request) {
	trips, err := a.Trips.ListByUser(r.Context(), chi.URLParam(r, "userEmail"))
	if err != nil {
		a.writeError(w, r, err, "Failed to get user trips")
		return
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	count := len(trips)
	a.json(w, http.StatusOK, envelope{Success: true, Data: trips, Count: &count, Timestamp: a.timestamp()})
}

func (a *App) TripUpdate(w http.ResponseWriter, r *http.Request) {
	var in validation.UpdateTripInput
	if err := decode(w, r, &in); err != nil {
		a.writeError(w, r, err, "Failed to update trip")
		return
	}
	trip, err := a.Trips.Update(r.Context(), chi.URLParam(r, "tripId"), in)
	if err != nil {
		a.writeError(w, r, err, "Failed to update trip")
		return
	}
	a.ok(w, http.StatusOK, "Trip updated successfully", trip)
}

// TripDelete answers 200 whether or not the trip existed.
func (a *App) TripDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Trips.Delete(r.Context(), chi.URLParam(r, "tripId")); err != nil {
		a.writeError(w, r, err, "Failed to delete trip")
		return
	}
	a.ok(w, http.StatusOK, "Trip deleted successfully", nil)
}
