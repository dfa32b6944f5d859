// Package credentials keeps third-party API keys in the integration_tokens
// table so deployments can rotate them without restarting with new env.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tripplanner/internal/infra"
	"tripplanner/internal/sqlinline"
)

const ProviderGemini = "gemini"

// ErrEmptyToken is returned when asked to store a blank token.
var ErrEmptyToken = errors.New("credentials: token is required")

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Token returns the stored token for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	var token string
	if err := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider).Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("select %s token: %w", provider, err)
	}
	return strings.TrimSpace(token), nil
}

// SetToken stores token for provider, replacing any previous one. props is
// free-form metadata, e.g. the model the key was issued for.
func (s *Store) SetToken(ctx context.Context, provider, token string, props map[string]any) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if props == nil {
		props = map[string]any{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encode %s token properties: %w", provider, err)
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw); err != nil {
		return fmt.Errorf("upsert %s token: %w", provider, err)
	}
	return nil
}

// GeminiAPIKey returns envKey when set, otherwise the stored Gemini key.
func (s *Store) GeminiAPIKey(ctx context.Context, envKey string) (string, error) {
	if key := strings.TrimSpace(envKey); key != "" {
		return key, nil
	}
	return s.Token(ctx, ProviderGemini)
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, key, model string) error {
	props := map[string]any{}
	if model = strings.TrimSpace(model); model != "" {
		props["model"] = model
	}
	return s.SetToken(ctx, ProviderGemini, key, props)
}
