// Package tripclient is a Go client for the trip planner REST API.
package tripclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	defaultTimeout = 30 * time.Second
)

// Selection is what the user asks for.
type Selection struct {
	Location string `json:"location"`
	NoOfDays int    `json:"noOfDays"`
	Budget   string `json:"budget"`
	Travels  string `json:"travels"`
}

type Trip struct {
	ID            string          `json:"id"`
	UserSelection Selection       `json:"userSelection"`
	TripData      json.RawMessage `json:"tripData"`
	UserEmail     string          `json:"userEmail"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type CreateTripRequest struct {
	UserSelection Selection       `json:"userSelection"`
	UserEmail     string          `json:"userEmail"`
	TripData      json.RawMessage `json:"tripData,omitempty"`
}

// UpdateTripRequest carries a partial update; nil fields are left alone.
type UpdateTripRequest struct {
	UserSelection *Selection      `json:"userSelection,omitempty"`
	TripData      json.RawMessage `json:"tripData,omitempty"`
	UserEmail     *string         `json:"userEmail,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	Provider  string    `json:"provider"`
	TripCount int       `json:"tripCount"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

type UserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture,omitempty"`
	Provider string `json:"provider,omitempty"`
}

type UserStats struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	TripCount int       `json:"tripCount"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a non-2xx API answer.
type Error struct {
	Status  int
	Message string
	Detail  string
	Fields  []FieldError
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("tripclient: %d %s", e.Status, msg)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Count   int             `json:"count"`
	Details []FieldError    `json:"details"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	locale     string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sends the token as a bearer Authorization header.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithLocale asks the API for generated text in locale via X-Locale.
func WithLocale(locale string) Option {
	return func(c *Client) { c.locale = strings.TrimSpace(locale) }
}

func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{baseURL: baseURL, httpClient: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateTrip(ctx context.Context, req CreateTripRequest) (*Trip, error) {
	var trip Trip
	if _, err := c.do(ctx, http.MethodPost, "/trips", req, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (c *Client) Trip(ctx context.Context, id string) (*Trip, error) {
	var trip Trip
	if _, err := c.do(ctx, http.MethodGet, "/trips/"+url.PathEscape(id), nil, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// UserTrips lists the user's trips, newest first.
func (c *Client) UserTrips(ctx context.Context, email string) ([]Trip, error) {
	var trips []Trip
	if _, err := c.do(ctx, http.MethodGet, "/trips/user/"+url.PathEscape(email), nil, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

func (c *Client) UpdateTrip(ctx context.Context, id string, req UpdateTripRequest) (*Trip, error) {
	var trip Trip
	if _, err := c.do(ctx, http.MethodPut, "/trips/"+url.PathEscape(id), req, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (c *Client) DeleteTrip(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/trips/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) UpsertUser(ctx context.Context, req UserRequest) (*User, error) {
	var user User
	if _, err := c.do(ctx, http.MethodPost, "/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) User(ctx context.Context, email string) (*User, error) {
	var user User
	if _, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(email), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UserStats(ctx context.Context, email string) (*UserStats, error) {
	var stats UserStats
	if _, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(email)+"/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GenerateTrip returns a generated itinerary without storing it.
func (c *Client) GenerateTrip(ctx context.Context, sel Selection) (json.RawMessage, error) {
	var data json.RawMessage
	body := struct {
		UserSelection Selection `json:"userSelection"`
	}{sel}
	if _, err := c.do(ctx, http.MethodPost, "/ai/generate-trip", body, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Health checks the API, or the AI service when ai is true, and returns
// its status message.
func (c *Client) Health(ctx context.Context, ai bool) (string, error) {
	path := "/health"
	if ai {
		path = "/ai/health"
	}
	env, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (*envelope, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("tripclient: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("tripclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.locale != "" {
		req.Header.Set("X-Locale", c.locale)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tripclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("tripclient: read response: %w", err)
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("tripclient: decode response: %w", err)
		}
	}
	if resp.StatusCode >= 300 || (len(raw) > 0 && !env.Success) {
		return nil, &Error{Status: resp.StatusCode, Message: env.Message, Detail: env.Error, Fields: env.Details}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("tripclient: decode data: %w", err)
		}
	}
	return &env, nil
}
