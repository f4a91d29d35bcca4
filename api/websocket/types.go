package websocket

import (
	"context"

	"codeberg.org/kartuli/server/internal/quota"
	"codeberg.org/kartuli/server/kartuli/chat"
)

type ConnectParams struct {
	// jwt for signed-in users; browsers cannot set headers on websocket upgrades
	Token string `form:"token"`
}

// metered chat operations
type ChatService interface {
	Send(ctx context.Context, actor quota.Actor, req chat.Request) (*chat.Reply, error)
	GenerateImage(ctx context.Context, actor quota.Actor, req chat.ImageRequest) (*chat.ImageReply, error)
}

// read side of the quota gate
type UsageGate interface {
	CanConsume(ctx context.Context, actor quota.Actor, tokens int) (*quota.Decision, error)
	Disabled() bool
}

// looks up a user's current plan
type PlanReader interface {
	GetPlan(ctx context.Context, userID string) (string, error)
}

type QuotaDetails struct {
	Usage  quota.Usage  `json:"usage"`
	Limits quota.Limits `json:"limits"`
}
