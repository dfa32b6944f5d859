package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"tripplanner/internal/domain"
)

func validSelection() *domain.TripSelection {
	return &domain.TripSelection{Location: "Paris", NoOfDays: 3, Budget: domain.BudgetModerate, Travels: domain.TravelCouple}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *domain.ValidationError, got %v", err)
	}
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestValidateTripAcceptsAllEnumsAndRange(t *testing.T) {
	budgets := []domain.Budget{domain.BudgetCheap, domain.BudgetModerate, domain.BudgetExpensive}
	groups := []domain.TravelGroup{domain.TravelSolo, domain.TravelCouple, domain.TravelFamily, domain.TravelFriends}
	for _, days := range []domain.DayCount{1, 15, 30} {
		for _, b := range budgets {
			for _, g := range groups {
				in := CreateTripInput{
					UserSelection: &domain.TripSelection{Location: "Kyoto", NoOfDays: days, Budget: b, Travels: g},
					UserEmail:     "a@b.com",
				}
				if _, err := ValidateTrip(in); err != nil {
					t.Fatalf("ValidateTrip(%d,%s,%s) returned error: %v", days, b, g, err)
				}
			}
		}
	}
}

func TestValidateTripReportsEveryField(t *testing.T) {
	in := CreateTripInput{
		UserSelection: &domain.TripSelection{Location: "  ", NoOfDays: 31, Budget: "Luxury", Travels: "Crowd"},
		UserEmail:     "not-an-email",
	}
	_, err := ValidateTrip(in)
	fields := fieldsOf(t, err)

	want := []string{
		"userSelection.location",
		"userSelection.noOfDays",
		"userSelection.budget",
		"userSelection.travels",
		"userEmail",
	}
	if len(fields) != len(want) {
		t.Fatalf("got %d field errors (%v), want %d", len(fields), fields, len(want))
	}
	for _, f := range want {
		if _, ok := fields[f]; !ok {
			t.Fatalf("missing field error for %q in %v", f, fields)
		}
	}
	if msg := fields["userSelection.budget"]; !strings.Contains(msg, "Cheap, Moderate, Expensive") {
		t.Fatalf("budget message = %q", msg)
	}
}

func TestValidateTripNoOfDaysBounds(t *testing.T) {
	tests := []struct {
		name  string
		days  domain.DayCount
		valid bool
	}{
		{name: "zero", days: 0},
		{name: "negative", days: -4},
		{name: "fractional", days: domain.InvalidDayCount},
		{name: "lower bound", days: 1, valid: true},
		{name: "upper bound", days: 30, valid: true},
		{name: "above upper", days: 31},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sel := validSelection()
			sel.NoOfDays = tc.days
			_, err := ValidateTrip(CreateTripInput{UserSelection: sel, UserEmail: "a@b.com"})
			if tc.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			fields := fieldsOf(t, err)
			if _, ok := fields["userSelection.noOfDays"]; !ok || len(fields) != 1 {
				t.Fatalf("expected only noOfDays error, got %v", fields)
			}
		})
	}
}

func TestValidateTripMissingSelection(t *testing.T) {
	_, err := ValidateTrip(CreateTripInput{})
	fields := fieldsOf(t, err)
	if _, ok := fields["userSelection"]; !ok {
		t.Fatalf("expected userSelection error, got %v", fields)
	}
	if _, ok := fields["userEmail"]; !ok {
		t.Fatalf("expected userEmail error, got %v", fields)
	}
}

func TestValidateTripNormalizes(t *testing.T) {
	sel := validSelection()
	sel.Location = "  <Paris>  "
	out, err := ValidateTrip(CreateTripInput{
		UserSelection: sel,
		UserEmail:     " A@B.com ",
		TripData:      json.RawMessage(`null`),
	})
	if err != nil {
		t.Fatalf("ValidateTrip returned error: %v", err)
	}
	if out.UserSelection.Location != "Paris" {
		t.Fatalf("Location = %q, want %q", out.UserSelection.Location, "Paris")
	}
	if out.UserEmail != "A@B.com" {
		t.Fatalf("UserEmail = %q, want %q", out.UserEmail, "A@B.com")
	}
	if out.TripData != nil {
		t.Fatalf("expected null tripData to be dropped, got %s", out.TripData)
	}
	if sel.Location != "  <Paris>  " {
		t.Fatal("input selection must not be mutated")
	}
}

func TestValidateTripRejectsNonObjectTripData(t *testing.T) {
	_, err := ValidateTrip(CreateTripInput{UserSelection: validSelection(), UserEmail: "a@b.com", TripData: json.RawMessage(`[1,2]`)})
	fields := fieldsOf(t, err)
	if _, ok := fields["tripData"]; !ok {
		t.Fatalf("expected tripData error, got %v", fields)
	}
}

func TestValidateSelection(t *testing.T) {
	if _, err := ValidateSelection(nil); err == nil {
		t.Fatal("expected error for nil selection")
	}
	sel, err := ValidateSelection(validSelection())
	if err != nil {
		t.Fatalf("ValidateSelection returned error: %v", err)
	}
	if sel.Location != "Paris" {
		t.Fatalf("Location = %q", sel.Location)
	}
}

func TestValidateTripUpdate(t *testing.T) {
	email := " New@Example.com "
	patch, err := ValidateTripUpdate(UpdateTripInput{UserEmail: &email, TripData: json.RawMessage(`{"hotels":[]}`)})
	if err != nil {
		t.Fatalf("ValidateTripUpdate returned error: %v", err)
	}
	if patch.UserEmail == nil || *patch.UserEmail != "New@Example.com" {
		t.Fatalf("UserEmail = %v", patch.UserEmail)
	}
	if string(patch.TripData) != `{"hotels":[]}` {
		t.Fatalf("TripData = %s", patch.TripData)
	}

	bad := "nope"
	_, err = ValidateTripUpdate(UpdateTripInput{
		UserEmail:     &bad,
		UserSelection: &domain.TripSelection{Location: "Rome", NoOfDays: 50, Budget: domain.BudgetCheap, Travels: domain.TravelSolo},
	})
	fields := fieldsOf(t, err)
	if _, ok := fields["userEmail"]; !ok {
		t.Fatalf("expected userEmail error, got %v", fields)
	}
	if _, ok := fields["userSelection.noOfDays"]; !ok {
		t.Fatalf("expected noOfDays error, got %v", fields)
	}

	empty, err := ValidateTripUpdate(UpdateTripInput{})
	if err != nil || !empty.Empty() {
		t.Fatalf("expected empty patch, got %+v (%v)", empty, err)
	}
}

func TestValidateUser(t *testing.T) {
	out, err := ValidateUser(UserInput{Email: "Jane@Example.com", Name: " Jane "})
	if err != nil {
		t.Fatalf("ValidateUser returned error: %v", err)
	}
	if out.Provider != domain.DefaultProvider {
		t.Fatalf("Provider = %q, want %q", out.Provider, domain.DefaultProvider)
	}
	if out.Email != "Jane@Example.com" || out.Name != "Jane" {
		t.Fatalf("unexpected normalization: %+v", out)
	}

	_, err = ValidateUser(UserInput{Email: "bad", Name: "J", Picture: "not a uri"})
	fields := fieldsOf(t, err)
	for _, f := range []string{"email", "name", "picture"} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("missing %q error in %v", f, fields)
		}
	}

	long := strings.Repeat("x", 101)
	if _, err := ValidateUser(UserInput{Email: "a@b.com", Name: long}); err == nil {
		t.Fatal("expected error for name longer than 100 characters")
	}
	if _, err := ValidateUser(UserInput{Email: "a@b.com", Name: "Al", Picture: "https://lh3.googleusercontent.com/a/photo.jpg", Provider: "github"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidEmail(t *testing.T) {
	if !ValidEmail("a@b.com") {
		t.Fatal("expected a@b.com to be valid")
	}
	for _, s := range []string{"", "a@", "plain", "a b@c.com"} {
		if ValidEmail(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
