package bog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidSignature = errors.New("invalid callback signature")
	ErrNotConfigured    = errors.New("payment gateway not configured")
)

// order statuses reported by the gateway
const (
	StatusCreated    = "created"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
	StatusRefunded   = "refunded"
)

const (
	SignatureHeader   = "Callback-Signature"
	EventOrderPayment = "order_payment"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type BasketItem struct {
	ProductID   string  `json:"product_id"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type PurchaseUnits struct {
	Currency    string       `json:"currency"`
	TotalAmount float64      `json:"total_amount"`
	Basket      []BasketItem `json:"basket"`
}

type RedirectURLs struct {
	Success string `json:"success"`
	Fail    string `json:"fail"`
}

type OrderRequest struct {
	CallbackURL     string        `json:"callback_url"`
	ExternalOrderID string        `json:"external_order_id"`
	PurchaseUnits   PurchaseUnits `json:"purchase_units"`
	RedirectURLs    RedirectURLs  `json:"redirect_urls"`
}

type link struct {
	Href string `json:"href"`
}

type Order struct {
	ID    string `json:"id"`
	Links struct {
		Details  link `json:"details"`
		Redirect link `json:"redirect"`
	} `json:"_links"`
}

// the page the buyer is sent to
func (o *Order) RedirectURL() string {
	return o.Links.Redirect.Href
}

type OrderStatus struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Receipt struct {
	OrderID         string      `json:"order_id"`
	ExternalOrderID string      `json:"external_order_id"`
	OrderStatus     OrderStatus `json:"order_status"`
	PurchaseUnits   struct {
		Currency       string `json:"currency_code"`
		RequestAmount  string `json:"request_amount"`
		TransferAmount string `json:"transfer_amount"`
		RefundAmount   string `json:"refund_amount"`
	} `json:"purchase_units"`
}

func (r *Receipt) Completed() bool {
	return r.OrderStatus.Key == StatusCompleted
}

// reports whether the receipt belongs to the given local order and was raised
// for the given amount and currency
func (r *Receipt) Matches(externalOrderID string, amount float64, currency string) bool {
	if r.ExternalOrderID == "" || r.ExternalOrderID != externalOrderID {
		return false
	}

	if !strings.EqualFold(r.PurchaseUnits.Currency, currency) {
		return false
	}

	requested, err := strconv.ParseFloat(r.PurchaseUnits.RequestAmount, 64)
	if err != nil {
		return false
	}

	// amounts are tetri-precise
	return math.Abs(requested-amount) < 0.005
}

// payload posted to the callback URL
type Callback struct {
	Event            string  `json:"event"`
	ZonedRequestTime string  `json:"zoned_request_time"`
	Body             Receipt `json:"body"`
}

// non-2xx response from the gateway
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bog request failed with status %d: %s", e.StatusCode, e.Body)
}
