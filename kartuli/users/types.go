package users

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

const (
	PlanFree    = "FREE"
	PlanPremium = "PREMIUM"

	ProviderCredentials = "credentials"
)

// handles user database operations
type Repository struct {
	db *pgxpool.Pool
}

// represents an authenticated user
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	AvatarURL     string     `json:"avatar_url"`
	Provider      string     `json:"provider"`
	ProviderID    string     `json:"-"`
	PasswordHash  string     `json:"-"`
	Plan          string     `json:"plan"`
	IsAdmin       bool       `json:"is_admin"`
	PlanUpdatedAt *time.Time `json:"plan_updated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// user counts per plan for the admin dashboard
type PlanCounts struct {
	Total   int `json:"total"`
	Free    int `json:"free"`
	Premium int `json:"premium"`
}
