package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"tripplanner/internal/domain"
	"tripplanner/internal/infra"
	"tripplanner/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository. Email is a unique key,
// so upserts and counter updates are single atomic statements.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// Upsert inserts a user with a zero trip count or, when the email exists,
// merges name, picture and provider and refreshes last_login.
func (r *UserRepositoryPG) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertUser, user.Email, user.Name, user.Picture, user.Provider)
	u, err := scanUser(row)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "upsert user", Err: err}
	}
	return u, nil
}

// GetByEmail fetches a user by email.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, email))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "get user", Err: err}
	}
	return u, nil
}

// IncrementTripCount adds one to the user's trip count and returns the new value.
func (r *UserRepositoryPG) IncrementTripCount(ctx context.Context, email string) (int, error) {
	var count int
	if err := r.sql.QueryRow(ctx, sqlinline.QIncrementTripCount, email).Scan(&count); err != nil {
		if infra.IsNoRows(err) {
			return 0, domain.ErrNotFound
		}
		return 0, &domain.PersistenceError{Op: "increment trip count", Err: err}
	}
	return count, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Picture, &u.Provider, &u.TripCount, &u.CreatedAt, &u.LastLogin, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
