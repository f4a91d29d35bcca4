package admin

import (
	"context"

	"codeberg.org/kartuli/server/api/rest/pagination"
	"codeberg.org/kartuli/server/internal/quota"
	"codeberg.org/kartuli/server/kartuli/payments"
	"codeberg.org/kartuli/server/kartuli/users"
)

type UserStore interface {
	FindByID(ctx context.Context, userID string) (*users.User, error)
	UpdatePlan(ctx context.Context, userID, plan string) (*users.User, error)
	List(ctx context.Context, limit, offset int) ([]users.User, error)
	CountByPlan(ctx context.Context) (*users.PlanCounts, error)
}

type OrderStore interface {
	List(ctx context.Context, limit, offset int) ([]payments.Order, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]payments.Order, error)
	Stats(ctx context.Context) (*payments.Stats, error)
}

type Gate interface {
	CanConsume(ctx context.Context, actor quota.Actor, tokens int) (*quota.Decision, error)
	History(ctx context.Context, actor quota.Actor, limit int) ([]quota.DailyUsage, error)
	Disabled() bool
}

type SetPlanRequest struct {
	Plan string `json:"plan" binding:"required,oneof=FREE PREMIUM"`
}

type UsersResponse struct {
	Users      []users.User    `json:"users"`
	Pagination pagination.Meta `json:"pagination"`
}

type UserUsageResponse struct {
	User      *users.User        `json:"user"`
	Usage     quota.Usage        `json:"usage"`
	Limits    quota.Limits       `json:"limits"`
	Remaining quota.Usage        `json:"remaining"`
	History   []quota.DailyUsage `json:"history"`
	Orders    []payments.Order   `json:"orders"`
}

type PaymentsResponse struct {
	Orders     []payments.Order `json:"orders"`
	Stats      *payments.Stats  `json:"stats"`
	Pagination pagination.Meta  `json:"pagination"`
}

type StatsResponse struct {
	Users            *users.PlanCounts `json:"users"`
	Payments         *payments.Stats   `json:"payments"`
	TrackingDisabled bool              `json:"tracking_disabled"`
}
