package payments

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/kartuli/server/internal/auth"
	"codeberg.org/kartuli/server/internal/bog"
	"codeberg.org/kartuli/server/internal/errors"
	"codeberg.org/kartuli/server/internal/logger"
	"codeberg.org/kartuli/server/kartuli/payments"
	"codeberg.org/kartuli/server/kartuli/users"
)

const maxCallbackBody = 64 << 10

// CheckoutHandler godoc
// @Summary Start a premium purchase
// @Description Creates a payment order with the Bank of Georgia gateway and returns the page to send the buyer to
// @Tags payments
// @Produce json
// @Success 201 {object} CheckoutResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/payments/checkout [post]
// @Security BearerAuth
func CheckoutHandler(gateway Gateway, orders Orders, plans PlanReader, settings Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gateway == nil {
			errors.ServiceUnavailable(c, "payments are not available")
			return
		}

		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		ctx := c.Request.Context()

		plan, err := plans.GetPlan(ctx, userID)
		if stderrors.Is(err, users.ErrNotFound) {
			errors.Unauthorized(c, "account no longer exists")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to read plan", err)
			return
		}

		if plan == users.PlanPremium {
			errors.Conflict(c, "already on the premium plan")
			return
		}

		order, err := orders.Create(ctx, userID, users.PlanPremium, settings.Price, settings.Currency)
		if err != nil {
			errors.InternalError(c, "failed to create order", err)
			return
		}

		created, err := gateway.CreateOrder(ctx, bog.OrderRequest{
			CallbackURL:     settings.BaseURL + "/api/v1/payments/callback",
			ExternalOrderID: order.ID,
			PurchaseUnits: bog.PurchaseUnits{
				Currency:    settings.Currency,
				TotalAmount: settings.Price,
				Basket: []bog.BasketItem{{
					ProductID:   "kartuli-premium",
					Description: "Kartuli AI premium, 1 month",
					Quantity:    1,
					UnitPrice:   settings.Price,
				}},
			},
			RedirectURLs: bog.RedirectURLs{
				Success: settings.BaseURL + "/payments/success?order=" + order.ID,
				Fail:    settings.BaseURL + "/payments/failed?order=" + order.ID,
			},
		})
		if err != nil {
			if markErr := orders.MarkStatus(ctx, order.ID, payments.StatusRejected); markErr != nil {
				logger.ErrorErr(markErr, "failed to mark order rejected", "order_id", order.ID)
			}

			errors.UpstreamError(c, "payment gateway unavailable", err)
			return
		}

		if err := orders.AttachProviderOrder(ctx, order.ID, created.ID, created.RedirectURL()); err != nil {
			errors.InternalError(c, "failed to store order", err)
			return
		}

		logger.Info("checkout started", "order_id", order.ID, "provider_order_id", created.ID, "user_id", userID)

		c.JSON(http.StatusCreated, CheckoutResponse{
			OrderID:     order.ID,
			RedirectURL: created.RedirectURL(),
			Amount:      settings.Price,
			Currency:    settings.Currency,
		})
	}
}

// CallbackHandler godoc
// @Summary Payment gateway callback
// @Description Receives order status updates. The signature is verified, the status confirmed with the gateway,
// @Description and a completed order upgrades its buyer to PREMIUM exactly once.
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/payments/callback [post]
func CallbackHandler(gateway Gateway, orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gateway == nil {
			errors.ServiceUnavailable(c, "payments are not available")
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
		if err != nil {
			errors.BadRequest(c, "failed to read body", err)
			return
		}

		if err := gateway.VerifyCallback(body, c.GetHeader(bog.SignatureHeader)); err != nil {
			logger.Warn("rejected payment callback", "ip", c.ClientIP(), "error", err.Error())
			errors.BadRequest(c, "invalid signature", nil)
			return
		}

		var callback bog.Callback
		if err := json.Unmarshal(body, &callback); err != nil || callback.Body.OrderID == "" {
			errors.BadRequest(c, "invalid callback payload", err)
			return
		}

		ctx := c.Request.Context()

		order, err := orders.FindByProviderOrderID(ctx, callback.Body.OrderID)
		if stderrors.Is(err, payments.ErrNotFound) && callback.Body.ExternalOrderID != "" {
			order, err = orders.FindByID(ctx, callback.Body.ExternalOrderID)
		}

		if stderrors.Is(err, payments.ErrNotFound) {
			errors.NotFound(c, "order")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to load order", err)
			return
		}

		providerOrderID := callback.Body.OrderID
		if order.ProviderOrderID != "" {
			providerOrderID = order.ProviderOrderID
		}

		// the callback body is only a hint; the receipt is authoritative
		receipt, err := gateway.GetReceipt(ctx, providerOrderID)
		if err != nil {
			errors.UpstreamError(c, "failed to confirm payment", err)
			return
		}

		if !receipt.Matches(order.ID, order.Amount, order.Currency) {
			logger.Warn("payment receipt does not match order",
				"order_id", order.ID,
				"provider_order_id", providerOrderID,
				"receipt_external_order_id", receipt.ExternalOrderID,
				"ip", c.ClientIP(),
			)
			errors.BadRequest(c, "receipt does not match order", nil)
			return
		}

		switch {
		case receipt.Completed():
			upgraded, err := orders.Complete(ctx, order.ID)
			if err != nil {
				errors.InternalError(c, "failed to complete order", err)
				return
			}

			if upgraded {
				logger.Info("premium purchased", "order_id", order.ID, "user_id", order.UserID)
			}
		case receipt.OrderStatus.Key != "":
			if err := orders.MarkStatus(ctx, order.ID, receipt.OrderStatus.Key); err != nil {
				errors.InternalError(c, "failed to update order", err)
				return
			}
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "ok"})
	}
}

// GetOrderHandler godoc
// @Summary Get payment order status
// @Tags payments
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/payments/{id} [get]
// @Security BearerAuth
func GetOrderHandler(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		userID, _ := auth.GetUserID(c)

		order, err := orders.FindByID(c.Request.Context(), orderID)
		if stderrors.Is(err, payments.ErrNotFound) || (err == nil && order.UserID != userID) {
			errors.NotFound(c, "order")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to load order", err)
			return
		}

		c.JSON(http.StatusOK, StatusResponse{Order: order})
	}
}
