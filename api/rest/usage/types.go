package usage

import (
	"context"

	"codeberg.org/kartuli/server/internal/quota"
)

// read side of the quota gate
type Gate interface {
	CanConsume(ctx context.Context, actor quota.Actor, tokens int) (*quota.Decision, error)
	History(ctx context.Context, actor quota.Actor, limit int) ([]quota.DailyUsage, error)
	Disabled() bool
}

type Response struct {
	ActorType        quota.ActorType `json:"actor_type"`
	Plan             quota.Plan      `json:"plan,omitempty"`
	Usage            quota.Usage     `json:"usage"`
	Limits           quota.Limits    `json:"limits"`
	Remaining        quota.Usage     `json:"remaining"`
	TrackingDisabled bool            `json:"tracking_disabled"`
}

type HistoryResponse struct {
	Days []quota.DailyUsage `json:"days"`
}
