package websocket

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"

	"codeberg.org/kartuli/server/api/rest/usage"
	"codeberg.org/kartuli/server/internal/flowise"
	"codeberg.org/kartuli/server/internal/quota"
	ws "codeberg.org/kartuli/server/internal/websocket"
	"codeberg.org/kartuli/server/kartuli/chat"
	"codeberg.org/kartuli/server/kartuli/users"
)

// answers chat, image and usage messages on behalf of connected clients
type messageHandlers struct {
	chat  ChatService
	gate  UsageGate
	plans PlanReader
}

// registers the chat message handlers on the hub
func RegisterHandlers(hub *ws.Hub, svc ChatService, gate UsageGate, plans PlanReader) {
	h := &messageHandlers{chat: svc, gate: gate, plans: plans}

	hub.RegisterHandler(ws.TypeChat, h.handleChat)
	hub.RegisterHandler(ws.TypeImage, h.handleImage)
	hub.RegisterHandler(ws.TypeUsage, h.handleUsage)
}

// connections outlive plan changes, so the plan is read again for every message
func (h *messageHandlers) currentActor(ctx context.Context, client *ws.Client) (quota.Actor, error) {
	a := client.Actor
	if a.Type != quota.ActorUser {
		return a, nil
	}

	plan, err := h.plans.GetPlan(ctx, a.ID)
	if err != nil {
		return quota.Actor{}, fmt.Errorf("failed to resolve plan: %w", err)
	}

	return quota.User(a.ID, quota.ParsePlan(plan)), nil
}

func decode(msg *ws.Message, v any) error {
	if err := msg.UnmarshalPayload(v); err != nil {
		return err
	}

	if err := binding.Validator.ValidateStruct(v); err != nil {
		return ws.ErrInvalidMessage
	}

	return nil
}

func (h *messageHandlers) handleChat(ctx context.Context, client *ws.Client, msg *ws.Message) error {
	var req chat.Request
	if err := decode(msg, &req); err != nil {
		return err
	}

	a, err := h.currentActor(ctx, client)
	if err != nil {
		return replyError(client, msg.ID, err)
	}

	reply, err := h.chat.Send(ctx, a, req)
	if err != nil {
		return replyError(client, msg.ID, err)
	}

	return client.Reply(ws.TypeChatReply, msg.ID, reply)
}

func (h *messageHandlers) handleImage(ctx context.Context, client *ws.Client, msg *ws.Message) error {
	var req chat.ImageRequest
	if err := decode(msg, &req); err != nil {
		return err
	}

	a, err := h.currentActor(ctx, client)
	if err != nil {
		return replyError(client, msg.ID, err)
	}

	reply, err := h.chat.GenerateImage(ctx, a, req)
	if err != nil {
		return replyError(client, msg.ID, err)
	}

	return client.Reply(ws.TypeImageReply, msg.ID, reply)
}

func (h *messageHandlers) handleUsage(ctx context.Context, client *ws.Client, msg *ws.Message) error {
	a, err := h.currentActor(ctx, client)
	if err != nil {
		return replyError(client, msg.ID, err)
	}

	decision, err := h.gate.CanConsume(ctx, a, 0)
	if err != nil {
		return err
	}

	return client.Reply(ws.TypeUsageState, msg.ID, usage.NewResponse(a, decision, h.gate.Disabled()))
}

// answers expected failures directly; anything else goes back to the hub
func replyError(client *ws.Client, id string, err error) error {
	var quotaErr *chat.QuotaError

	switch {
	case stderrors.As(err, &quotaErr):
		client.SendError(id, "quota_exceeded", quotaErr.Error(), QuotaDetails{
			Usage:  quotaErr.Decision.Usage,
			Limits: quotaErr.Decision.Limits,
		})
	case stderrors.Is(err, chat.ErrEmptyMessage), stderrors.Is(err, chat.ErrMessageTooLong):
		client.SendError(id, "bad_request", err.Error(), nil)
	case stderrors.Is(err, users.ErrNotFound):
		client.SendError(id, "unauthorized", "account no longer exists", nil)
	case stderrors.Is(err, flowise.ErrImagesDisabled):
		client.SendError(id, "service_unavailable", "image generation is not available", nil)
	case stderrors.Is(err, chat.ErrUpstream):
		client.SendError(id, "upstream_error", "assistant is unavailable, try again later", nil)
	default:
		return err
	}

	return nil
}
