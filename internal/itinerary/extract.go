package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"tripplanner/internal/domain"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n?\\s*```")

// ErrNoJSON is wrapped by ExtractJSON when the text holds no JSON object.
var ErrNoJSON = errors.New("model response is not valid JSON")

// ExtractJSON returns the JSON object in a model reply. A ```json fenced
// block wins over the raw text; anything else is an *domain.UpstreamError.
func ExtractJSON(text string) (json.RawMessage, error) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if raw, ok := jsonObject(m[1]); ok {
			return raw, nil
		}
	}
	if raw, ok := jsonObject(text); ok {
		return raw, nil
	}
	return nil, &domain.UpstreamError{Op: "extract itinerary", Err: ErrNoJSON}
}

func jsonObject(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") || !json.Valid([]byte(s)) {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, false
	}
	return json.RawMessage(buf.Bytes()), true
}
