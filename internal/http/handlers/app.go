package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tripplanner/internal/domain"
	"tripplanner/internal/infra"
	"tripplanner/internal/middleware"
	"tripplanner/internal/validation"
)

// TripService is the trip API surface the handlers depend on.
type TripService interface {
	Create(ctx context.Context, in validation.CreateTripInput, locale string) (*domain.Trip, error)
	Generate(ctx context.Context, sel *domain.TripSelection, locale string) (json.RawMessage, error)
	Get(ctx context.Context, id string) (*domain.Trip, error)
	ListByUser(ctx context.Context, email string) ([]domain.Trip, error)
	Update(ctx context.Context, id string, in validation.UpdateTripInput) (*domain.Trip, error)
	Delete(ctx context.Context, id string) error
}

// UserService is the user API surface the handlers depend on.
type UserService interface {
	Upsert(ctx context.Context, in validation.UserInput) (*domain.User, error)
	Get(ctx context.Context, email string) (*domain.User, error)
	Stats(ctx context.Context, email string) (*domain.UserStats, error)
}

const (
	maxBodyBytes = 1 << 20
	// statusClientClosedRequest follows the nginx convention.
	statusClientClosedRequest = 499
)

// ReadyCheck reports whether a backing dependency is reachable.
type ReadyCheck func(ctx context.Context) error

type App struct {
	Trips  TripService
	Users  UserService
	Logger *infra.Logger
	// Checks is keyed by dependency name, e.g. "postgres".
	Checks map[string]ReadyCheck
	now    func() time.Time
}

func NewApp(trips TripService, users UserService, logger *infra.Logger) *App {
	if logger == nil {
		l := infra.NopLogger()
		logger = &l
	}
	return &App{Trips: trips, Users: users, Logger: logger, Checks: map[string]ReadyCheck{}, now: time.Now}
}

// envelope is the body of every API response.
type envelope struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message,omitempty"`
	Data      any                 `json:"data,omitempty"`
	Error     string              `json:"error,omitempty"`
	Count     *int                `json:"count,omitempty"`
	Details   []domain.FieldError `json:"details,omitempty"`
	Timestamp string              `json:"timestamp"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) timestamp() string {
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	return now().UTC().Format(time.RFC3339Nano)
}

func (a *App) ok(w http.ResponseWriter, code int, message string, data any) {
	a.json(w, code, envelope{Success: true, Message: message, Data: data, Timestamp: a.timestamp()})
}

func (a *App) fail(w http.ResponseWriter, code int, message, detail string) {
	a.json(w, code, envelope{Success: false, Message: message, Error: detail, Timestamp: a.timestamp()})
}

// writeError maps a service error onto a status code. message is the
// generic text for failures the caller cannot correct.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logger := middleware.RequestLogger(r.Context(), *a.Logger)

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		a.json(w, http.StatusBadRequest, envelope{
			Success:   false,
			Message:   "Validation failed",
			Error:     verr.Error(),
			Details:   verr.Fields,
			Timestamp: a.timestamp(),
		})
	case errors.Is(err, domain.ErrNotFound):
		a.fail(w, http.StatusNotFound, message, err.Error())
	case errors.Is(err, context.Canceled):
		logger.Info().Str("path", r.URL.Path).Msg("request canceled by client")
		a.fail(w, statusClientClosedRequest, message, err.Error())
	default:
		event := logger.Error().Err(err).Str("path", r.URL.Path)
		switch {
		case domain.IsUpstream(err):
			event = event.Str("kind", "upstream")
		case domain.IsPersistence(err):
			event = event.Str("kind", "persistence")
		}
		event.Msg(message)
		a.fail(w, http.StatusInternalServerError, message, err.Error())
	}
}

// decode reads a JSON body. Malformed JSON is reported as a validation
// error on the body itself.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("body", "request body must be valid JSON")
	}
	return nil
}
