package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"tripplanner/internal/adapter/repo"
	"tripplanner/internal/cache"
	"tripplanner/internal/http/handlers"
	httpapi "tripplanner/internal/http/httpapi"
	"tripplanner/internal/infra"
	"tripplanner/internal/infra/credentials"
	"tripplanner/internal/infra/geoip"
	"tripplanner/internal/itinerary"
	"tripplanner/internal/middleware"
	"tripplanner/internal/providers/genai"
	"tripplanner/internal/retry"
	"tripplanner/internal/service"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	runner := infra.NewSQLRunner(dbpool, logger)

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	apiKey, err := credentials.NewStore(runner).GeminiAPIKey(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load stored gemini api key")
	}
	if apiKey == "" {
		logger.Warn().Msg("no gemini api key configured; generation requests will fail")
	}
	client, err := genai.NewClient(genai.Options{
		APIKey:  apiKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini client")
	}

	genOpts := itinerary.Options{
		Model:  client,
		Logger: &logger,
		Retry: retry.Policy{
			MaxRetries:   cfg.AIMaxRetries,
			InitialDelay: cfg.AIRetryDelay,
			MaxDelay:     30 * time.Second,
			OnRetry: func(err error, wait time.Duration) {
				logger.Warn().Err(err).Dur("wait", wait).Msg("retrying itinerary generation")
			},
		},
	}
	genOpts.Cache = itineraryCache(redisClient, cfg.ItineraryCacheTTL)
	generator := itinerary.NewGenerator(genOpts)

	users := repo.NewUserRepository(runner)
	trips := repo.NewTripRepository(runner)

	app := handlers.NewApp(
		service.NewTripService(trips, users, generator, &logger),
		service.NewUserService(users, &logger),
		&logger,
	)
	app.Checks["postgres"] = runner.Ping
	if redisClient != nil {
		app.Checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		Locales:         middleware.NewLocales(cfg.DefaultLocale, cfg.SupportedLocales),
		CountryLookup:   resolver.Lookup(),
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("model", client.Model()).
			Bool("cache", genOpts.Cache != nil).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// itineraryCache returns nil unless Redis is configured and ttl is positive.
// The nil is returned untyped: a nil *cache.ItineraryCache in the interface
// would not compare equal to nil.
func itineraryCache(client *redis.Client, ttl time.Duration) itinerary.Cache {
	if ttl <= 0 {
		return nil
	}
	if c := cache.NewItineraryCache(client, ttl); c != nil {
		return c
	}
	return nil
}
