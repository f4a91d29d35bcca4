package usage

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codeberg.org/kartuli/server/api/rest/actor"
	"codeberg.org/kartuli/server/internal/errors"
	"codeberg.org/kartuli/server/internal/quota"
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 90
)

// NewResponse builds the usage payload from a zero-cost check
func NewResponse(a quota.Actor, decision *quota.Decision, disabled bool) Response {
	return Response{
		ActorType:        a.Type,
		Plan:             a.Plan,
		Usage:            decision.Usage,
		Limits:           decision.Limits,
		Remaining:        decision.Remaining(),
		TrackingDisabled: disabled,
	}
}

// GetUsage godoc
// @Summary Get current usage
// @Description Returns the caller's token and image usage for the current day and month with their limits.
// @Description Works for guests (cookie) and signed-in users (bearer token); it never consumes quota.
// @Tags usage
// @Produce json
// @Success 200 {object} Response
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/usage [get]
func GetUsage(gate Gate, resolver *actor.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := resolver.MustResolve(c)
		if !ok {
			return
		}

		decision, err := gate.CanConsume(c.Request.Context(), a, 0)
		if err != nil {
			errors.InternalError(c, "failed to fetch usage", err)
			return
		}

		c.JSON(http.StatusOK, NewResponse(a, decision, gate.Disabled()))
	}
}

// GetHistory godoc
// @Summary Get daily usage history
// @Description Returns the signed-in user's token totals per day, newest first.
// @Tags usage
// @Produce json
// @Param days query int false "Number of days (default 30, max 90)"
// @Success 200 {object} HistoryResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/usage/history [get]
// @Security BearerAuth
func GetHistory(gate Gate, resolver *actor.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultHistoryDays)))
		if err != nil || days <= 0 {
			days = defaultHistoryDays
		}

		days = min(days, maxHistoryDays)

		a, ok := resolver.MustResolve(c)
		if !ok {
			return
		}

		history, err := gate.History(c.Request.Context(), a, days)
		if err != nil {
			errors.InternalError(c, "failed to fetch usage history", err)
			return
		}

		c.JSON(http.StatusOK, HistoryResponse{Days: history})
	}
}
