package admin

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/kartuli/server/api/rest/pagination"
	"codeberg.org/kartuli/server/internal/errors"
	"codeberg.org/kartuli/server/internal/logger"
	"codeberg.org/kartuli/server/internal/quota"
	"codeberg.org/kartuli/server/kartuli/users"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	historyDays     = 30
	recentOrders    = 10
)

// ListUsers godoc
// @Summary List users (admin)
// @Tags admin
// @Produce json
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} UsersResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/v1/admin/users [get]
// @Security BearerAuth
func ListUsers(userRepo UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := pagination.FromQuery(c, defaultPageSize, maxPageSize)

		list, err := userRepo.List(c.Request.Context(), params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, "failed to list users", err)
			return
		}

		counts, err := userRepo.CountByPlan(c.Request.Context())
		if err != nil {
			errors.InternalError(c, "failed to count users", err)
			return
		}

		c.JSON(http.StatusOK, UsersResponse{
			Users:      list,
			Pagination: pagination.NewMeta(params, counts.Total),
		})
	}
}

// SetPlan godoc
// @Summary Override a user's plan (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body SetPlanRequest true "New plan"
// @Success 200 {object} users.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/admin/users/{id}/plan [put]
// @Security BearerAuth
func SetPlan(userRepo UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		var req SetPlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		user, err := userRepo.UpdatePlan(c.Request.Context(), userID, req.Plan)
		if stderrors.Is(err, users.ErrNotFound) {
			errors.NotFound(c, "user")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to update plan", err)
			return
		}

		logger.Info("plan changed by admin",
			"user_id", userID,
			"plan", user.Plan,
			"admin_id", c.GetString("user_id"),
		)

		c.JSON(http.StatusOK, user)
	}
}

// GetUserUsage godoc
// @Summary Inspect a user's quota (admin)
// @Description Current usage, limits, recent daily history and payment orders of one user
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} UserUsageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/admin/users/{id}/usage [get]
// @Security BearerAuth
func GetUserUsage(userRepo UserStore, orderRepo OrderStore, gate Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		ctx := c.Request.Context()

		user, err := userRepo.FindByID(ctx, userID)
		if stderrors.Is(err, users.ErrNotFound) {
			errors.NotFound(c, "user")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to load user", err)
			return
		}

		actor := quota.User(user.ID, quota.ParsePlan(user.Plan))

		decision, err := gate.CanConsume(ctx, actor, 0)
		if err != nil {
			errors.InternalError(c, "failed to fetch usage", err)
			return
		}

		history, err := gate.History(ctx, actor, historyDays)
		if err != nil {
			errors.InternalError(c, "failed to fetch usage history", err)
			return
		}

		orders, err := orderRepo.ListByUser(ctx, userID, recentOrders)
		if err != nil {
			errors.InternalError(c, "failed to fetch orders", err)
			return
		}

		c.JSON(http.StatusOK, UserUsageResponse{
			User:      user,
			Usage:     decision.Usage,
			Limits:    decision.Limits,
			Remaining: decision.Remaining(),
			History:   history,
			Orders:    orders,
		})
	}
}

// ListPayments godoc
// @Summary List payment orders (admin)
// @Tags admin
// @Produce json
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} PaymentsResponse
// @Router /api/v1/admin/payments [get]
// @Security BearerAuth
func ListPayments(orderRepo OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := pagination.FromQuery(c, defaultPageSize, maxPageSize)

		orders, err := orderRepo.List(c.Request.Context(), params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, "failed to list orders", err)
			return
		}

		stats, err := orderRepo.Stats(c.Request.Context())
		if err != nil {
			errors.InternalError(c, "failed to read payment stats", err)
			return
		}

		c.JSON(http.StatusOK, PaymentsResponse{
			Orders:     orders,
			Stats:      stats,
			Pagination: pagination.NewMeta(params, stats.Total),
		})
	}
}

// GetStats godoc
// @Summary Dashboard counters (admin)
// @Tags admin
// @Produce json
// @Success 200 {object} StatsResponse
// @Router /api/v1/admin/stats [get]
// @Security BearerAuth
func GetStats(userRepo UserStore, orderRepo OrderStore, gate Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := userRepo.CountByPlan(c.Request.Context())
		if err != nil {
			errors.InternalError(c, "failed to count users", err)
			return
		}

		stats, err := orderRepo.Stats(c.Request.Context())
		if err != nil {
			errors.InternalError(c, "failed to read payment stats", err)
			return
		}

		c.JSON(http.StatusOK, StatsResponse{
			Users:            counts,
			Payments:         stats,
			TrackingDisabled: gate.Disabled(),
		})
	}
}
