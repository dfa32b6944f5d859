// Package validation checks trip and user payloads before they reach the
// model or the store. Every violated field is reported, not just the first.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tripplanner/internal/domain"
)

// CreateTripInput is the body of POST /api/trips. TripData is optional and
// lets clients submit an itinerary they already generated.
type CreateTripInput struct {
	UserSelection *domain.TripSelection `json:"userSelection" validate:"required"`
	UserEmail     string                `json:"userEmail" validate:"required,email"`
	TripData      json.RawMessage       `json:"tripData,omitempty"`
}

// UpdateTripInput is the body of PUT /api/trips/{tripId}.
type UpdateTripInput struct {
	UserSelection *domain.TripSelection `json:"userSelection,omitempty" validate:"omitempty"`
	TripData      json.RawMessage       `json:"tripData,omitempty"`
	UserEmail     *string               `json:"userEmail,omitempty" validate:"omitempty,email"`
}

// UserInput is the body of POST /api/users.
type UserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Picture  string `json:"picture,omitempty" validate:"omitempty,uri"`
	Provider string `json:"provider,omitempty"`
}

type selectionInput struct {
	UserSelection *domain.TripSelection `json:"userSelection" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateTrip checks a trip-creation payload and returns a normalized copy.
func ValidateTrip(in CreateTripInput) (CreateTripInput, error) {
	out := in
	out.UserEmail = NormalizeEmail(in.UserEmail)
	if in.UserSelection != nil {
		sel := normalizeSelection(*in.UserSelection)
		out.UserSelection = &sel
	}
	if isNullJSON(out.TripData) {
		out.TripData = nil
	}

	errs := collect(validate.Struct(out))
	if len(out.TripData) > 0 && !isJSONObject(out.TripData) {
		errs = append(errs, domain.FieldError{Field: "tripData", Message: "tripData must be a JSON object"})
	}
	if len(errs) > 0 {
		return CreateTripInput{}, &domain.ValidationError{Fields: errs}
	}
	return out, nil
}

// ValidateSelection checks the selection used for itinerary generation.
func ValidateSelection(sel *domain.TripSelection) (domain.TripSelection, error) {
	in := selectionInput{UserSelection: sel}
	if sel != nil {
		normalized := normalizeSelection(*sel)
		in.UserSelection = &normalized
	}
	if errs := collect(validate.Struct(in)); len(errs) > 0 {
		return domain.TripSelection{}, &domain.ValidationError{Fields: errs}
	}
	return *in.UserSelection, nil
}

// ValidateTripUpdate checks a partial trip update and converts it to a patch.
func ValidateTripUpdate(in UpdateTripInput) (domain.TripPatch, error) {
	var patch domain.TripPatch
	if in.UserSelection != nil {
		sel := normalizeSelection(*in.UserSelection)
		in.UserSelection = &sel
		patch.UserSelection = &sel
	}
	if in.UserEmail != nil {
		email := NormalizeEmail(*in.UserEmail)
		in.UserEmail = &email
		patch.UserEmail = &email
	}

	errs := collect(validate.Struct(in))
	if len(in.TripData) > 0 && !isNullJSON(in.TripData) {
		if !isJSONObject(in.TripData) {
			errs = append(errs, domain.FieldError{Field: "tripData", Message: "tripData must be a JSON object"})
		} else {
			patch.TripData = in.TripData
		}
	}
	if len(errs) > 0 {
		return domain.TripPatch{}, &domain.ValidationError{Fields: errs}
	}
	return patch, nil
}

// ValidateUser checks a user payload and applies defaults.
func ValidateUser(in UserInput) (UserInput, error) {
	out := UserInput{
		Email:    NormalizeEmail(in.Email),
		Name:     Sanitize(in.Name),
		Picture:  strings.TrimSpace(in.Picture),
		Provider: strings.TrimSpace(in.Provider),
	}
	if out.Provider == "" {
		out.Provider = domain.DefaultProvider
	}
	if errs := collect(validate.Struct(out)); len(errs) > 0 {
		return UserInput{}, &domain.ValidationError{Fields: errs}
	}
	return out, nil
}

// ValidEmail reports whether s is a well-formed email address.
func ValidEmail(s string) bool {
	return validate.Var(strings.TrimSpace(s), "required,email") == nil
}

// NormalizeEmail drops surrounding space. Case is kept: stored records carry
// the email exactly as the caller sent it and lookups compare it as is.
func NormalizeEmail(s string) string {
	return strings.TrimSpace(s)
}

// Sanitize trims s and strips angle brackets.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

func normalizeSelection(sel domain.TripSelection) domain.TripSelection {
	sel.Location = Sanitize(sel.Location)
	sel.Budget = domain.Budget(strings.TrimSpace(string(sel.Budget)))
	sel.Travels = domain.TravelGroup(strings.TrimSpace(string(sel.Travels)))
	return sel
}

func collect(err error) []domain.FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []domain.FieldError{{Field: "", Message: err.Error()}}
	}
	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		out = append(out, domain.FieldError{Field: field, Message: message(field, fe)})
	}
	return out
}

// fieldPath drops the Go struct name from a validator namespace, leaving
// the JSON path such as "userSelection.noOfDays".
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "uri":
		return fmt.Sprintf("%s must be a valid URI", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "min", "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s length must be between 2 and 100 characters", field)
		}
		return fmt.Sprintf("%s must be an integer between %d and %d", field, domain.MinTripDays, domain.MaxTripDays)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func isNullJSON(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func isJSONObject(raw json.RawMessage) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal(raw, &obj) == nil && obj != nil
}
