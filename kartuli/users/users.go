package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// creates a new user repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanUser(row pgx.Row) (*User, error) {
	var user User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.AvatarURL,
		&user.Provider,
		&user.ProviderID,
		&user.PasswordHash,
		&user.Plan,
		&user.IsAdmin,
		&user.PlanUpdatedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// finds a user by OAuth identity or creates one; accounts are matched by email
func (r *Repository) FindOrCreateByProvider(
	ctx context.Context,
	provider, providerID, email, name, avatarURL string,
) (*User, error) {
	user, err := scanUser(r.db.QueryRow(
		ctx,
		queryFindOrCreateByProvider,
		provider,
		providerID,
		NormalizeEmail(email),
		name,
		avatarURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert oauth user: %w", err)
	}

	return user, nil
}

// registers a credentials user
func (r *Repository) CreateWithPassword(ctx context.Context, email, name, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := scanUser(r.db.QueryRow(ctx, queryCreateWithPassword, NormalizeEmail(email), name, hash))

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, ErrEmailTaken
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// verifies credentials and returns the user
func (r *Repository) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := r.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, err
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// finds a user by their ID
func (r *Repository) FindByID(ctx context.Context, userID string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, queryFindByID, userID))
}

// finds a user by email
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, queryFindByEmail, NormalizeEmail(email)))
}

// reads the current plan, bypassing anything cached in tokens
func (r *Repository) GetPlan(ctx context.Context, userID string) (string, error) {
	var plan string

	err := r.db.QueryRow(ctx, queryGetPlan, userID).Scan(&plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to read plan: %w", err)
	}

	return plan, nil
}

// sets the user's plan
func (r *Repository) UpdatePlan(ctx context.Context, userID, plan string) (*User, error) {
	if plan != PlanFree && plan != PlanPremium {
		return nil, fmt.Errorf("invalid plan %q", plan)
	}

	return scanUser(r.db.QueryRow(ctx, queryUpdatePlan, plan, userID))
}

// lists users, newest first
func (r *Repository) List(ctx context.Context, limit, offset int) ([]User, error) {
	rows, err := r.db.Query(ctx, queryList, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	list := []User{}

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		list = append(list, *user)
	}

	return list, rows.Err()
}

// counts users per plan
func (r *Repository) CountByPlan(ctx context.Context) (*PlanCounts, error) {
	var counts PlanCounts

	err := r.db.QueryRow(ctx, queryCountByPlan).Scan(&counts.Total, &counts.Free, &counts.Premium)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	return &counts, nil
}
