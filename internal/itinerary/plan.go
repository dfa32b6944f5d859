package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"tripplanner/internal/domain"
)

// ErrEmptyItinerary is wrapped when a plan has no day entries.
var ErrEmptyItinerary = errors.New("plan has no itinerary entries")

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Hotel is one entry of the plan's hotel options.
type Hotel struct {
	Name        string       `json:"name"`
	Address     string       `json:"address,omitempty"`
	Price       string       `json:"price,omitempty"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	Geo         *Coordinates `json:"geoCoordinates,omitempty"`
	Rating      float64      `json:"rating,omitempty"`
	Description string       `json:"description,omitempty"`
}

// Stop is a place visited during a day.
type Stop struct {
	PlaceName     string       `json:"placeName"`
	Details       string       `json:"placeDetails,omitempty"`
	ImageURL      string       `json:"placeImageUrl,omitempty"`
	Geo           *Coordinates `json:"geoCoordinates,omitempty"`
	TicketPricing string       `json:"ticketPricing,omitempty"`
	Rating        float64      `json:"rating,omitempty"`
	TimeTravel    string       `json:"timeTravel,omitempty"`
	BestTime      string       `json:"bestTimeToVisit,omitempty"`
	// DistanceKm is the distance to the first hotel, set by Annotate.
	DistanceKm *float64 `json:"distanceFromHotelKm,omitempty"`
}

// Day is one day of the itinerary.
type Day struct {
	Day      int    `json:"day"`
	Theme    string `json:"theme,omitempty"`
	BestTime string `json:"bestTimeToVisit,omitempty"`
	Stops    []Stop `json:"stops"`
}

// Plan is the normalized view of a generated itinerary. The stored trip
// keeps the model's JSON untouched; Plan is only used to inspect it.
type Plan struct {
	Location  string  `json:"location,omitempty"`
	Duration  string  `json:"duration,omitempty"`
	Budget    string  `json:"budget,omitempty"`
	Travelers string  `json:"travelers,omitempty"`
	Hotels    []Hotel `json:"hotels"`
	Days      []Day   `json:"itinerary"`
	// Unstructured is set when the itinerary is present and non-empty but
	// in a shape Inspect cannot break into days. Days is empty then.
	Unstructured bool `json:"unstructured,omitempty"`
}

// Inspect decodes raw into a Plan. It accepts the key spellings models use
// (hotel_options, hotels, hotelOptions; itinerary as an array, a
// day-keyed object or a {"days": [...]} wrapper) and a bare array of days.
// A plan without itinerary entries is an *domain.UpstreamError; a plan
// without hotels is returned as is.
func Inspect(raw json.RawMessage) (*Plan, error) {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		plan := &Plan{Days: parseDays(trimmed)}
		if len(plan.Days) == 0 {
			return nil, &domain.UpstreamError{Op: "inspect itinerary", Err: ErrEmptyItinerary}
		}
		return plan, nil
	}

	root, err := object(raw)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "inspect itinerary", Err: err}
	}

	plan := &Plan{
		Location:  str(root, "location", "destination"),
		Duration:  str(root, "duration", "noofdays", "days"),
		Budget:    str(root, "budget"),
		Travelers: str(root, "travelers", "travellers", "travels", "travelgroup"),
	}

	if rawHotels, ok := pick(root, "hoteloptions", "hotels", "hotellist", "hoteloptionslist"); ok {
		plan.Hotels = parseHotels(rawHotels)
	}

	rawDays, ok := pick(root, "itinerary", "itineraryplan", "dailyplan", "dailyitinerary", "days")
	if ok {
		plan.Days = parseDays(rawDays)
	}
	if len(plan.Days) == 0 {
		if ok && !isEmptyJSON(rawDays) {
			plan.Unstructured = true
			return plan, nil
		}
		return nil, &domain.UpstreamError{Op: "inspect itinerary", Err: ErrEmptyItinerary}
	}
	return plan, nil
}

// TotalStops counts the places across all days.
func (p *Plan) TotalStops() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Stops)
	}
	return n
}

// Annotate sets each stop's distance to the first hotel that has
// coordinates. Stops without coordinates are left untouched.
func (p *Plan) Annotate() {
	var origin *Coordinates
	for _, h := range p.Hotels {
		if h.Geo != nil {
			origin = h.Geo
			break
		}
	}
	if origin == nil {
		return
	}
	for i := range p.Days {
		for j := range p.Days[i].Stops {
			stop := &p.Days[i].Stops[j]
			if stop.Geo == nil {
				continue
			}
			km := Distance(*origin, *stop.Geo)
			stop.DistanceKm = &km
		}
	}
}

func parseHotels(raw json.RawMessage) []Hotel {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	hotels := make([]Hotel, 0, len(items))
	for _, item := range items {
		m, err := object(item)
		if err != nil {
			continue
		}
		hotels = append(hotels, Hotel{
			Name:        str(m, "hotelname", "name"),
			Address:     str(m, "hoteladdress", "address"),
			Price:       str(m, "hotelprice", "price", "pricepernight"),
			ImageURL:    str(m, "hotelimageurl", "imageurl", "image"),
			Geo:         coords(m),
			Rating:      num(m, "rating"),
			Description: str(m, "description", "descriptions", "details"),
		})
	}
	return hotels
}

var stopKeys = []string{"plan", "activities", "places", "schedule", "stops", "dayplan", "attractions"}

func parseDays(raw json.RawMessage) []Day {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return daysFromList(list)
	}

	m, err := object(raw)
	if err != nil {
		return nil
	}
	if inner, ok := pick(m, "days", "daily", "dailyplan"); ok {
		if days := parseDays(inner); len(days) > 0 {
			return days
		}
	}

	type keyed struct {
		n   int
		key string
	}
	keys := make([]keyed, 0, len(m))
	for k := range m {
		keys = append(keys, keyed{n: trailingNumber(k), key: k})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].n != keys[j].n {
			return keys[i].n < keys[j].n
		}
		return keys[i].key < keys[j].key
	})
	days := make([]Day, 0, len(keys))
	for i, k := range keys {
		number := k.n
		if number <= 0 {
			number = i + 1
		}
		if dm, err := object(m[k.key]); err == nil {
			days = append(days, dayFrom(dm, number))
			continue
		}
		// {"day1": [{...}, {...}]}
		if stops := stopsFrom(m[k.key]); len(stops) > 0 {
			days = append(days, Day{Day: number, Stops: stops})
		}
	}
	return days
}

// daysFromList handles both an array of day objects and a flat array of
// places tagged with a day number.
func daysFromList(list []json.RawMessage) []Day {
	days := make([]Day, 0, len(list))
	byNumber := map[int]int{}
	for i, item := range list {
		m, err := object(item)
		if err != nil {
			continue
		}
		if _, ok := pick(m, stopKeys...); ok {
			days = append(days, dayFrom(m, dayNumber(m, i+1)))
			continue
		}
		if str(m, "placename", "place", "name") == "" {
			if _, ok := firstObjectList(m); ok {
				days = append(days, dayFrom(m, dayNumber(m, i+1)))
			}
			continue
		}
		n := dayNumber(m, 1)
		idx, ok := byNumber[n]
		if !ok {
			days = append(days, Day{Day: n})
			idx = len(days) - 1
			byNumber[n] = idx
		}
		days[idx].Stops = append(days[idx].Stops, stopFrom(m))
	}
	return days
}

func dayFrom(m map[string]json.RawMessage, number int) Day {
	d := Day{
		Day:      number,
		Theme:    str(m, "theme", "title"),
		BestTime: str(m, "besttimetovisit", "besttime"),
	}
	rawStops, ok := pick(m, stopKeys...)
	if !ok {
		rawStops, ok = firstObjectList(m)
	}
	if ok {
		d.Stops = stopsFrom(rawStops)
	}
	return d
}

func stopsFrom(raw json.RawMessage) []Stop {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var stops []Stop
	for _, item := range items {
		sm, err := object(item)
		if err != nil {
			continue
		}
		stops = append(stops, stopFrom(sm))
	}
	return stops
}

// firstObjectList returns the first field, in key order, holding a
// non-empty array of objects.
func firstObjectList(m map[string]json.RawMessage) (json.RawMessage, bool) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(m[k], &items); err == nil && len(items) > 0 && items[0] != nil {
			return m[k], true
		}
	}
	return nil, false
}

func isEmptyJSON(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func stopFrom(m map[string]json.RawMessage) Stop {
	return Stop{
		PlaceName:     str(m, "placename", "place", "name"),
		Details:       str(m, "placedetails", "details", "description"),
		ImageURL:      str(m, "placeimageurl", "imageurl", "image"),
		Geo:           coords(m),
		TicketPricing: str(m, "ticketpricing", "ticketprice", "price"),
		Rating:        num(m, "rating"),
		TimeTravel:    str(m, "timetravel", "traveltime", "timetotravel"),
		BestTime:      str(m, "besttimetovisit", "besttime", "time"),
	}
}

func dayNumber(m map[string]json.RawMessage, fallback int) int {
	if raw, ok := pick(m, "day", "daynumber"); ok {
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
			return int(n)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if n := trailingNumber(s); n > 0 {
				return n
			}
		}
	}
	return fallback
}

func coords(m map[string]json.RawMessage) *Coordinates {
	raw, ok := pick(m, "geocoordinates", "coordinates", "geo", "location")
	if !ok {
		return nil
	}
	if cm, err := object(raw); err == nil {
		lat, okLat := pick(cm, "latitude", "lat")
		lng, okLng := pick(cm, "longitude", "lng", "lon", "long")
		if !okLat || !okLng {
			return nil
		}
		return &Coordinates{Latitude: number(lat), Longitude: number(lng)}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(strings.TrimRight(parts[0], "°NSns ")), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(strings.TrimRight(parts[1], "°EWew ")), 64)
	if errLat != nil || errLng != nil {
		return nil
	}
	return &Coordinates{Latitude: lat, Longitude: lng}
}

// object decodes raw into a map keyed by normalized field names.
func object(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	if m == nil {
		return nil, errors.New("decode object: null")
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		nk := normalizeKey(k)
		if _, exists := out[nk]; !exists {
			out[nk] = v
		}
	}
	return out, nil
}

// normalizeKey lower-cases k and drops separators so hotel_name, hotelName
// and "Hotel Name" compare equal.
func normalizeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func pick(m map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := m[normalizeKey(k)]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

func str(m map[string]json.RawMessage, keys ...string) string {
	raw, ok := pick(m, keys...)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func num(m map[string]json.RawMessage, keys ...string) float64 {
	raw, ok := pick(m, keys...)
	if !ok {
		return 0
	}
	return number(raw)
}

func number(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return 0
}

func trailingNumber(s string) int {
	end := len(s)
	start := end
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0
	}
	return n
}
