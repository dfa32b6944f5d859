package service

import (
	"context"

	"tripplanner/internal/domain"
	"tripplanner/internal/infra"
	"tripplanner/internal/validation"
)

// UserService implements the user use cases.
type UserService struct {
	users  domain.UserRepository
	logger *infra.Logger
}

func NewUserService(users domain.UserRepository, logger *infra.Logger) *UserService {
	if logger == nil {
		l := infra.NopLogger()
		logger = &l
	}
	return &UserService{users: users, logger: logger}
}

// Upsert creates the user or refreshes an existing one with the same email.
func (s *UserService) Upsert(ctx context.Context, in validation.UserInput) (*domain.User, error) {
	in, err := validation.ValidateUser(in)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Upsert(ctx, &domain.User{
		Email:    in.Email,
		Name:     in.Name,
		Picture:  in.Picture,
		Provider: in.Provider,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("user_email", user.Email).Int("trip_count", user.TripCount).Msg("user upserted")
	return user, nil
}

// Get returns the user with the given email.
func (s *UserService) Get(ctx context.Context, email string) (*domain.User, error) {
	if !validation.ValidEmail(email) {
		return nil, domain.NewValidationError("email", "email must be a valid email")
	}
	return s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
}

// Stats returns the public statistics of a user.
func (s *UserService) Stats(ctx context.Context, email string) (*domain.UserStats, error) {
	user, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	stats := user.Stats()
	return &stats, nil
}
