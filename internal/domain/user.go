package domain

import "time"

// DefaultProvider is the identity provider assumed when none is given.
const DefaultProvider = "google"

// User is an account keyed by email.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	Provider  string    `json:"provider"`
	TripCount int       `json:"tripCount"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserStats is the public statistics view of a user.
type UserStats struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	TripCount int       `json:"tripCount"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

// Stats projects the user onto its statistics view.
func (u User) Stats() UserStats {
	return UserStats{
		Email:     u.Email,
		Name:      u.Name,
		TripCount: u.TripCount,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}
