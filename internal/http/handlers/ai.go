package handlers

import (
	"net/http"

	"tripplanner/internal/domain"
	"tripplanner/internal/middleware"
)

type generateRequest struct {
	UserSelection *domain.TripSelection `json:"userSelection"`
}

// AIGenerateTrip returns a generated itinerary without storing it.
func (a *App) AIGenerateTrip(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(w, r, &req); err != nil {
		a.writeError(w, r, err, "Failed to generate trip with AI")
		return
	}
	data, err := a.Trips.Generate(r.Context(), req.UserSelection, middleware.LocaleFromContext(r.Context()))
	if err != nil {
		a.writeError(w, r, err, "Failed to generate trip with AI")
		return
	}
	a.ok(w, http.StatusOK, "", data)
}

func (a *App) AIHealth(w http.ResponseWriter, r *http.Request) {
	a.ok(w, http.StatusOK, "AI service is operational", nil)
}
