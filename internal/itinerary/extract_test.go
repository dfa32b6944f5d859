package itinerary

import (
	"errors"
	"testing"

	"tripplanner/internal/domain"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "fenced block",
			text: "Here is your plan:\n```json\n{\"hotels\": [], \"itinerary\": []}\n```\nEnjoy!",
			want: `{"hotels":[],"itinerary":[]}`,
			ok:   true,
		},
		{
			name: "fenced block wins over surrounding braces",
			text: "{not json} ```json\n{\"a\": 1}\n```",
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "raw object",
			text: "  {\"a\": {\"b\": [1, 2]}}\n",
			want: `{"a":{"b":[1,2]}}`,
			ok:   true,
		},
		{
			name: "broken fence falls back to raw text",
			text: "```json\n{broken\n```",
		},
		{
			name: "prose",
			text: "Sorry, I cannot help with that.",
		},
		{
			name: "unfenced object inside prose is not scanned",
			text: "Here you go: {\"itinerary\": []} Have fun!",
		},
		{
			name: "array is not a plan",
			text: "[1, 2, 3]",
		},
		{
			name: "empty",
			text: "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := ExtractJSON(tc.text)
			if !tc.ok {
				if !domain.IsUpstream(err) {
					t.Fatalf("expected UpstreamError, got %v", err)
				}
				if !errors.Is(err, ErrNoJSON) {
					t.Fatalf("expected ErrNoJSON, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSON returned error: %v", err)
			}
			if string(raw) != tc.want {
				t.Fatalf("ExtractJSON = %s, want %s", raw, tc.want)
			}
		})
	}
}

func TestExtractJSONHandlesExampleAnswer(t *testing.T) {
	raw, err := ExtractJSON(exampleAnswer)
	if err != nil {
		t.Fatalf("ExtractJSON(exampleAnswer) returned error: %v", err)
	}
	plan, err := Inspect(raw)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if len(plan.Hotels) != 3 || plan.TotalStops() != 1 {
		t.Fatalf("unexpected plan: %d hotels, %d stops", len(plan.Hotels), plan.TotalStops())
	}
}
