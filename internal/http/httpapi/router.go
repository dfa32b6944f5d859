package httpapi

import (
	"net/http"
	"time"

	"tripplanner/internal/http/handlers"
	"tripplanner/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Options configures the middleware chain around the API routes.
type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	Locales         *middleware.Locales
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	if opts.Locales == nil {
		opts.Locales = middleware.NewLocales("en", nil)
	}

	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.Locales, opts.CountryLookup),
	)

	// Generation calls the model, so it is rate limited per client IP.
	limited := middleware.RateLimit(opts.RateLimitPerMin, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.Health)
		r.Get("/ready", app.Ready)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Route("/trips", func(r chi.Router) {
			r.With(limited).Post("/", app.TripsCreate)
			r.Get("/user/{userEmail}", app.TripsByUser)
			r.Get("/{tripId}", app.TripGet)
			r.Put("/{tripId}", app.TripUpdate)
			r.Delete("/{tripId}", app.TripDelete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", app.UsersUpsert)
			r.Get("/{email}", app.UserGet)
			r.Get("/{email}/stats", app.UserStats)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Get("/health", app.AIHealth)
			r.With(limited).Post("/generate-trip", app.AIGenerateTrip)
		})
	})

	return r
}
