package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates a new payment order repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanOrder(row pgx.Row) (*Order, error) {
	var order Order

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.ProviderOrderID,
		&order.Plan,
		&order.Amount,
		&order.Currency,
		&order.Status,
		&order.RedirectURL,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.CompletedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func collect(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()

	orders := []Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		orders = append(orders, *order)
	}

	return orders, rows.Err()
}

// records a new order; its id doubles as the gateway's external order id
func (r *Repository) Create(ctx context.Context, userID, plan string, amount float64, currency string) (*Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, queryCreate, uuid.NewString(), userID, plan, amount, currency))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// stores the gateway's order id and redirect link
func (r *Repository) AttachProviderOrder(ctx context.Context, orderID, providerOrderID, redirectURL string) error {
	tag, err := r.db.Exec(ctx, queryAttachProviderOrder, providerOrderID, redirectURL, orderID)
	if err != nil {
		return fmt.Errorf("failed to attach provider order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) FindByID(ctx context.Context, orderID string) (*Order, error) {
	return scanOrder(r.db.QueryRow(ctx, queryFindByID, orderID))
}

func (r *Repository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*Order, error) {
	return scanOrder(r.db.QueryRow(ctx, queryFindByProviderOrderID, providerOrderID))
}

// updates a non-final order status
func (r *Repository) MarkStatus(ctx context.Context, orderID, status string) error {
	if _, err := r.db.Exec(ctx, queryMarkStatus, status, orderID); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}

// completes the order and upgrades the buyer in one transaction;
// returns false when the order was already completed
func (r *Repository) Complete(ctx context.Context, orderID string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck

	var userID, plan string

	err = tx.QueryRow(ctx, queryComplete, orderID).Scan(&userID, &plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to complete order: %w", err)
	}

	if _, err := tx.Exec(ctx, queryUpgradeUser, plan, userID); err != nil {
		return false, fmt.Errorf("failed to upgrade user plan: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]Order, error) {
	rows, err := r.db.Query(ctx, queryList, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return collect(rows)
}

func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]Order, error) {
	rows, err := r.db.Query(ctx, queryListByUser, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return collect(rows)
}

func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats

	if err := r.db.QueryRow(ctx, queryStats).Scan(&stats.Total, &stats.Completed, &stats.Pending, &stats.Revenue); err != nil {
		return nil, fmt.Errorf("failed to read payment stats: %w", err)
	}

	return &stats, nil
}
