package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripplanner/internal/domain"
	"tripplanner/internal/infra"
	"tripplanner/internal/providers/genai"
	"tripplanner/internal/retry"
)

// TextModel is the part of the Gemini client the generator needs.
type TextModel interface {
	GenerateText(ctx context.Context, req genai.TextRequest) (*genai.TextResponse, error)
}

// Cache stores generated plans by selection and locale.
type Cache interface {
	Lookup(ctx context.Context, sel domain.TripSelection, locale string) (json.RawMessage, bool, error)
	Store(ctx context.Context, sel domain.TripSelection, locale string, plan json.RawMessage) error
}

// Options configures a Generator. Cache and Retry are optional.
type Options struct {
	Model  TextModel
	Cache  Cache
	Retry  retry.Policy
	Logger *infra.Logger
}

// Generator produces itineraries. It holds no per-request state and is safe
// for concurrent use.
type Generator struct {
	model  TextModel
	cache  Cache
	retry  retry.Policy
	logger *infra.Logger
}

// NewGenerator wires a Generator.
func NewGenerator(opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		l := infra.NopLogger()
		logger = &l
	}
	return &Generator{
		model:  opts.Model,
		cache:  opts.Cache,
		retry:  opts.Retry,
		logger: logger,
	}
}

// Generate asks the model for a plan matching sel and returns its JSON.
// Every failure, including incomplete selections, is an
// *domain.UpstreamError.
func (g *Generator) Generate(ctx context.Context, sel domain.TripSelection, locale string) (json.RawMessage, error) {
	if err := checkSelection(sel); err != nil {
		return nil, &domain.UpstreamError{Op: "generate itinerary", Err: err}
	}
	if g.model == nil {
		return nil, &domain.UpstreamError{Op: "generate itinerary", Err: errors.New("text model is not configured")}
	}

	if g.cache != nil {
		plan, ok, err := g.cache.Lookup(ctx, sel, locale)
		switch {
		case err != nil:
			g.logger.Warn().Err(err).Str("trip", sel.Summary()).Msg("itinerary: cache lookup failed")
		case ok:
			g.logger.Debug().Str("trip", sel.Summary()).Msg("itinerary: cache hit")
			return plan, nil
		}
	}

	started := time.Now()
	policy := g.retry
	if policy.Enabled() && policy.OnRetry == nil {
		policy.OnRetry = func(err error, wait time.Duration) {
			g.logger.Warn().Err(err).Dur("wait", wait).Str("trip", sel.Summary()).Msg("itinerary: retrying generation")
		}
	}

	var raw json.RawMessage
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		out, err := g.attempt(ctx, sel, locale)
		if err != nil {
			return err
		}
		raw = out
		return nil
	})
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return nil, err
		}
		return nil, &domain.UpstreamError{Op: "generate itinerary", Err: err}
	}

	g.logger.Info().
		Str("trip", sel.Summary()).
		Str("locale", locale).
		Dur("elapsed", time.Since(started)).
		Msg("itinerary: generated")

	if g.cache != nil {
		if err := g.cache.Store(ctx, sel, locale, raw); err != nil {
			g.logger.Warn().Err(err).Str("trip", sel.Summary()).Msg("itinerary: cache store failed")
		}
	}
	return raw, nil
}

func (g *Generator) attempt(ctx context.Context, sel domain.TripSelection, locale string) (json.RawMessage, error) {
	res, err := g.model.GenerateText(ctx, genai.TextRequest{
		Prompt:           BuildPrompt(sel, locale),
		History:          exampleHistory(),
		GenerationConfig: genai.DefaultGenerationConfig(),
	})
	if err != nil {
		if errors.Is(err, genai.ErrMissingAPIKey) || ctx.Err() != nil {
			return nil, retry.Permanent(&domain.UpstreamError{Op: "call model", Err: err})
		}
		return nil, &domain.UpstreamError{Op: "call model", Err: err}
	}

	raw, err := ExtractJSON(res.Text)
	if err != nil {
		return nil, err
	}
	plan, err := Inspect(raw)
	if err != nil {
		return nil, err
	}
	if plan.Unstructured {
		g.logger.Warn().Str("trip", sel.Summary()).Msg("itinerary: keeping plan with unrecognized day layout")
	}
	if len(plan.Hotels) == 0 {
		g.logger.Warn().Str("trip", sel.Summary()).Msg("itinerary: plan has no hotel options")
	}
	return raw, nil
}

func checkSelection(sel domain.TripSelection) error {
	var missing []string
	if strings.TrimSpace(sel.Location) == "" {
		missing = append(missing, "location")
	}
	if sel.NoOfDays == 0 {
		missing = append(missing, "noOfDays")
	}
	if sel.Budget == "" {
		missing = append(missing, "budget")
	}
	if sel.Travels == "" {
		missing = append(missing, "travels")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if sel.NoOfDays < domain.MinTripDays || sel.NoOfDays > domain.MaxTripDays {
		return fmt.Errorf("trip duration must be between %d and %d days", domain.MinTripDays, domain.MaxTripDays)
	}
	return nil
}
