package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"tripplanner/internal/domain"
	"tripplanner/internal/http/handlers"
	"tripplanner/internal/itinerary"
	"tripplanner/internal/middleware"
	"tripplanner/internal/providers/genai"
	"tripplanner/internal/service"

	"github.com/rs/zerolog"
)

const parisPlan = `{"hotel_options":[{"hotelName":"Hotel Le Marais","hotelAddress":"12 Rue de Bretagne, Paris","price":"€180 per night","hotelImageUrl":"https://example.com/h.jpg","geoCoordinates":{"latitude":48.8625,"longitude":2.3622},"rating":4.4,"description":"Boutique hotel"}],"itinerary":[{"day":1,"plan":[{"placeName":"Louvre Museum","placeDetails":"Art museum","placeImageUrl":"https://example.com/l.jpg","geoCoordinates":{"latitude":48.8606,"longitude":2.3376},"ticketPricing":"€17","rating":4.7,"timeToTravel":"2 hours"}]}]}`

type memTrips struct {
	mu   sync.Mutex
	seq  int
	byID map[string]domain.Trip
}

func (m *memTrips) Create(_ context.Context, trip *domain.Trip) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := *trip
	t.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq)
	t.CreatedAt = time.Date(2026, 10, 18, 0, m.seq, 0, 0, time.UTC)
	t.UpdatedAt = t.CreatedAt
	m.byID[t.ID] = t
	return &t, nil
}

func (m *memTrips) GetByID(_ context.Context, id string) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memTrips) Update(_ context.Context, id string, patch domain.TripPatch) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.UserSelection != nil {
		t.UserSelection = *patch.UserSelection
	}
	if len(patch.TripData) > 0 {
		t.TripData = patch.TripData
	}
	if patch.UserEmail != nil {
		t.UserEmail = *patch.UserEmail
	}
	t.UpdatedAt = t.UpdatedAt.Add(time.Second)
	m.byID[id] = t
	return &t, nil
}

func (m *memTrips) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memTrips) ListByUser(_ context.Context, email string) ([]domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Trip{}
	for _, t := range m.byID {
		if t.UserEmail == email {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (m *memUsers) Upsert(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[u.Email]
	if !ok {
		existing = domain.User{ID: fmt.Sprintf("user-%d", len(m.users)+1), Email: u.Email, CreatedAt: time.Now().UTC()}
	}
	existing.Name = u.Name
	existing.Provider = u.Provider
	existing.LastLogin = time.Now().UTC()
	m.users[u.Email] = existing
	return &existing, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) IncrementTripCount(_ context.Context, email string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return 0, domain.ErrNotFound
	}
	u.TripCount++
	m.users[email] = u
	return u.TripCount, nil
}

type testServer struct {
	handler http.Handler
	users   *memUsers
	gemini  *httptest.Server
	prompts []string
}

// newTestServer wires the real services and Gemini client against an
// in-memory store and a fake Gemini endpoint.
func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	ts := &testServer{users: &memUsers{users: map[string]domain.User{}}}
	var mu sync.Mutex
	ts.gemini = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if n := len(body.Contents); n > 0 && len(body.Contents[n-1].Parts) > 0 {
			mu.Lock()
			ts.prompts = append(ts.prompts, body.Contents[n-1].Parts[0].Text)
			mu.Unlock()
		}
		reply := map[string]any{
			"candidates": []any{map[string]any{
				"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": "```json\n" + parisPlan + "\n```"}}},
				"finishReason": "STOP",
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(ts.gemini.Close)

	client, err := genai.NewClient(genai.Options{APIKey: "test-key", BaseURL: ts.gemini.URL})
	if err != nil {
		t.Fatalf("genai.NewClient: %v", err)
	}
	generator := itinerary.NewGenerator(itinerary.Options{Model: client})
	trips := service.NewTripService(&memTrips{byID: map[string]domain.Trip{}}, ts.users, generator, nil)
	users := service.NewUserService(ts.users, nil)

	app := handlers.NewApp(trips, users, nil)
	ts.handler = NewRouter(app, Options{
		Logger:          zerolog.Nop(),
		AllowedOrigins:  []string{"http://localhost:5173"},
		Locales:         middleware.NewLocales("en", []string{"en", "id", "fr"}),
		RateLimitPerMin: rateLimit,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, rr.Body.String(), err)
	}
	return rr, payload
}

func TestCreateParisTrip(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.do(t, http.MethodPost, "/api/users", `{"email":"a@b.com","name":"Ana"}`, nil)

	rr, body := ts.do(t, http.MethodPost, "/api/trips",
		`{"userSelection":{"location":"Paris","noOfDays":3,"budget":"Moderate","travels":"Couple"},"userEmail":"a@b.com"}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %v", rr.Code, body)
	}
	data := body["data"].(map[string]any)
	if data["userEmail"] != "a@b.com" {
		t.Fatalf("userEmail = %v", data["userEmail"])
	}
	tripData := data["tripData"].(map[string]any)
	if days, _ := tripData["itinerary"].([]any); len(days) == 0 {
		t.Fatalf("expected a non-empty itinerary, got %v", tripData)
	}

	id := data["id"].(string)
	rr, body = ts.do(t, http.MethodGet, "/api/trips/"+id, "", nil)
	if rr.Code != http.StatusOK || body["data"].(map[string]any)["id"] != id {
		t.Fatalf("round trip failed: %d %v", rr.Code, body)
	}

	_, body = ts.do(t, http.MethodGet, "/api/users/a@b.com/stats", "", nil)
	if body["data"].(map[string]any)["tripCount"] != float64(1) {
		t.Fatalf("trip count not incremented: %v", body)
	}

	_, body = ts.do(t, http.MethodGet, "/api/trips/user/a@b.com", "", nil)
	if body["count"] != float64(1) {
		t.Fatalf("list count = %v", body["count"])
	}
}

func TestCreateTripWithoutUserStillSucceeds(t *testing.T) {
	ts := newTestServer(t, 0)
	rr, body := ts.do(t, http.MethodPost, "/api/trips",
		`{"userSelection":{"location":"Paris","noOfDays":3,"budget":"Moderate","travels":"Couple"},"userEmail":"ghost@b.com"}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %v", rr.Code, body)
	}
}

func TestCreateTripValidation(t *testing.T) {
	ts := newTestServer(t, 0)
	rr, body := ts.do(t, http.MethodPost, "/api/trips",
		`{"userSelection":{"location":"Paris","noOfDays":31,"budget":"Lavish","travels":"Couple"},"userEmail":"nope"}`, nil)
	if rr.Code != http.StatusBadRequest || body["success"] != false {
		t.Fatalf("status = %d, body = %v", rr.Code, body)
	}
	if details, _ := body["details"].([]any); len(details) != 3 {
		t.Fatalf("expected 3 field errors, got %v", body["details"])
	}
	if len(ts.prompts) != 0 {
		t.Fatal("invalid input must not reach the model")
	}
}

func TestGetUnknownTrip(t *testing.T) {
	ts := newTestServer(t, 0)
	rr, body := ts.do(t, http.MethodGet, "/api/trips/does-not-exist", "", nil)
	if rr.Code != http.StatusNotFound || body["success"] != false {
		t.Fatalf("status = %d, body = %v", rr.Code, body)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ts := newTestServer(t, 0)
	for i := 0; i < 2; i++ {
		rr, body := ts.do(t, http.MethodDelete, "/api/trips/does-not-exist", "", nil)
		if rr.Code != http.StatusOK || body["success"] != true {
			t.Fatalf("delete #%d: status = %d, body = %v", i+1, rr.Code, body)
		}
	}
}

func TestUpsertUserTwice(t *testing.T) {
	ts := newTestServer(t, 0)
	_, first := ts.do(t, http.MethodPost, "/api/users", `{"email":"a@b.com","name":"Ana"}`, nil)
	rr, second := ts.do(t, http.MethodPost, "/api/users", `{"email":"a@b.com","name":"Ana Maria"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	a, b := first["data"].(map[string]any), second["data"].(map[string]any)
	if a["id"] != b["id"] || b["name"] != "Ana Maria" {
		t.Fatalf("expected one updated record, got %v then %v", a, b)
	}
	if len(ts.users.users) != 1 {
		t.Fatalf("store holds %d users, want 1", len(ts.users.users))
	}

	rr, _ = ts.do(t, http.MethodGet, "/api/users/not-an-email", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed email status = %d, want 400", rr.Code)
	}
	rr, _ = ts.do(t, http.MethodGet, "/api/users/missing@b.com", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing user status = %d, want 404", rr.Code)
	}
}

func TestGenerateUsesNegotiatedLanguage(t *testing.T) {
	ts := newTestServer(t, 0)
	rr, body := ts.do(t, http.MethodPost, "/api/ai/generate-trip",
		`{"userSelection":{"location":"Paris","noOfDays":3,"budget":"Moderate","travels":"Couple"}}`,
		map[string]string{"Accept-Language": "fr-FR,fr;q=0.9"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rr.Code, body)
	}
	if rr.Header().Get("Content-Language") != "fr" {
		t.Fatalf("Content-Language = %q", rr.Header().Get("Content-Language"))
	}
	if len(ts.prompts) != 1 || !strings.Contains(ts.prompts[0], "French") {
		t.Fatalf("prompt did not request French: %v", ts.prompts)
	}
}

func TestGenerateIsRateLimited(t *testing.T) {
	ts := newTestServer(t, 1)
	payload := `{"userSelection":{"location":"Paris","noOfDays":3,"budget":"Moderate","travels":"Couple"}}`
	if rr, _ := ts.do(t, http.MethodPost, "/api/ai/generate-trip", payload, nil); rr.Code != http.StatusOK {
		t.Fatalf("first call status = %d", rr.Code)
	}
	rr, body := ts.do(t, http.MethodPost, "/api/ai/generate-trip", payload, nil)
	if rr.Code != http.StatusTooManyRequests || body["success"] != false {
		t.Fatalf("second call status = %d, body = %v", rr.Code, body)
	}
	// Reads are not limited.
	if rr, _ := ts.do(t, http.MethodGet, "/api/ai/health", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("health status = %d", rr.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, 0)
	for _, path := range []string{"/api/health", "/api/ai/health", "/api/ready"} {
		rr, body := ts.do(t, http.MethodGet, path, "", nil)
		if rr.Code != http.StatusOK || body["success"] != true {
			t.Fatalf("%s: status = %d, body = %v", path, rr.Code, body)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s: missing X-Request-ID", path)
		}
	}
}
