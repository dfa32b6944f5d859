package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Budget is the spending tier of a trip.
type Budget string

const (
	BudgetCheap     Budget = "Cheap"
	BudgetModerate  Budget = "Moderate"
	BudgetExpensive Budget = "Expensive"
)

// TravelGroup describes who is travelling.
type TravelGroup string

const (
	TravelSolo    TravelGroup = "Solo"
	TravelCouple  TravelGroup = "Couple"
	TravelFamily  TravelGroup = "Family"
	TravelFriends TravelGroup = "Friends"
)

const (
	MinTripDays = 1
	MaxTripDays = 30
)

// DayCount is the trip length in days. It decodes from a JSON number or a
// numeric string; anything else, including fractional values, decodes to
// InvalidDayCount so validation can report it alongside other fields.
type DayCount int

// InvalidDayCount marks a noOfDays value that was present but not an integer.
const InvalidDayCount DayCount = -1

func (d *DayCount) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if bytes.Equal(raw, []byte("null")) {
		*d = 0
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			*d = InvalidDayCount
			return nil
		}
		raw = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		*d = InvalidDayCount
		return nil
	}
	*d = DayCount(int(f))
	return nil
}

// TripSelection holds the user-supplied parameters that drive generation.
type TripSelection struct {
	Location string      `json:"location" validate:"required"`
	NoOfDays DayCount    `json:"noOfDays" validate:"required,min=1,max=30"`
	Budget   Budget      `json:"budget" validate:"required,oneof=Cheap Moderate Expensive"`
	Travels  TravelGroup `json:"travels" validate:"required,oneof=Solo Couple Family Friends"`
}

// Summary renders a one-line description such as
// "3 days trip to Paris for Couple with Moderate budget".
func (s TripSelection) Summary() string {
	unit := "days"
	if s.NoOfDays == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%d %s trip to %s for %s with %s budget", s.NoOfDays, unit, s.Location, s.Travels, s.Budget)
}

// Trip is a stored, generated trip plan. TripData is the model output kept
// as opaque JSON.
type Trip struct {
	ID            string          `json:"id"`
	UserSelection TripSelection   `json:"userSelection"`
	TripData      json.RawMessage `json:"tripData"`
	UserEmail     string          `json:"userEmail"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// TripPatch carries the fields of a partial update. Nil fields are left
// untouched.
type TripPatch struct {
	UserSelection *TripSelection
	TripData      json.RawMessage
	UserEmail     *string
}

// Empty reports whether the patch changes nothing.
func (p TripPatch) Empty() bool {
	return p.UserSelection == nil && len(p.TripData) == 0 && p.UserEmail == nil
}
