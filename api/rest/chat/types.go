package chat

import (
	"context"

	"codeberg.org/kartuli/server/internal/quota"
	"codeberg.org/kartuli/server/kartuli/chat"
)

// metered chat operations
type Service interface {
	Send(ctx context.Context, actor quota.Actor, req chat.Request) (*chat.Reply, error)
	GenerateImage(ctx context.Context, actor quota.Actor, req chat.ImageRequest) (*chat.ImageReply, error)
}
