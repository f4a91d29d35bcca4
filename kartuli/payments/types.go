package payments

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("payment order not found")

const (
	StatusCreated   = "created"
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
	StatusRefunded  = "refunded"
)

// handles payment order database operations
type Repository struct {
	db *pgxpool.Pool
}

type Order struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ProviderOrderID string     `json:"provider_order_id,omitempty"`
	Plan            string     `json:"plan"`
	Amount          float64    `json:"amount"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	RedirectURL     string     `json:"redirect_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// revenue overview for the admin dashboard
type Stats struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Pending   int     `json:"pending"`
	Revenue   float64 `json:"revenue"`
}
