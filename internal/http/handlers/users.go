package handlers

import (
	"net/http"

	"tripplanner/internal/validation"

	"github.com/go-chi/chi/v5"
)

func (a *App) UsersUpsert(w http.ResponseWriter, r *http.Request) {
	var in validation.UserInput
	if err := decode(w, r, &in); err != nil {
		a.writeError(w, r, err, "Failed to process user")
		return
	}
	user, err := a.Users.Upsert(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err, "Failed to process user")
		return
	}
	a.ok(w, http.StatusOK, "User processed successfully", user)
}

func (a *App) UserGet(w http.ResponseWriter, r *http.Request) {
	user, err := a.Users.Get(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		a.writeError(w, r, err, "User not found")
		return
	}
	a.ok(w, http.StatusOK, "", user)
}

func (a *App) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Users.Stats(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		a.writeError(w, r, err, "User not found")
		return
	}
	a.ok(w, http.StatusOK, "", stats)
}
