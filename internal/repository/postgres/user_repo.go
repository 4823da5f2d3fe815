package postgres

import (
	"context"
	"errors"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, auth0_id, email, name, created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Auth0ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	ctx := context.Background()
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (r *UserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	ctx := context.Background()
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth0_id = $1 AND deleted_at IS NULL`, auth0ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateOrGetByAuth0ID inserts the user on first login, or returns the
// existing row. Email and name refresh from the identity provider on conflict.
func (r *UserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name *string) (*domain.User, error) {
	ctx := context.Background()
	user, err := scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (id, auth0_id, email, name)
		VALUES (gen_random_uuid(), $1, $2, $3)
		ON CONFLICT (auth0_id) DO UPDATE
		SET email = EXCLUDED.email, name = COALESCE(EXCLUDED.name, users.name), updated_at = now()
		RETURNING `+userColumns,
		auth0ID, email, textOrNil(name)))
	if err != nil {
		return nil, err
	}
	return user, nil
}
