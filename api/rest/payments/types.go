package payments

import (
	"context"

	"codeberg.org/kartuli/server/internal/bog"
	"codeberg.org/kartuli/server/kartuli/payments"
)

// payment gateway operations
type Gateway interface {
	CreateOrder(ctx context.Context, order bog.OrderRequest) (*bog.Order, error)
	GetReceipt(ctx context.Context, orderID string) (*bog.Receipt, error)
	VerifyCallback(body []byte, signature string) error
}

// order persistence
type Orders interface {
	Create(ctx context.Context, userID, plan string, amount float64, currency string) (*payments.Order, error)
	AttachProviderOrder(ctx context.Context, orderID, providerOrderID, redirectURL string) error
	FindByID(ctx context.Context, orderID string) (*payments.Order, error)
	FindByProviderOrderID(ctx context.Context, providerOrderID string) (*payments.Order, error)
	MarkStatus(ctx context.Context, orderID, status string) error
	Complete(ctx context.Context, orderID string) (bool, error)
}

type PlanReader interface {
	GetPlan(ctx context.Context, userID string) (string, error)
}

// pricing and URLs used when creating orders
type Settings struct {
	BaseURL  string
	Price    float64
	Currency string
}

type CheckoutResponse struct {
	OrderID     string  `json:"order_id"`
	RedirectURL string  `json:"redirect_url"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

type StatusResponse struct {
	Order *payments.Order `json:"order"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
