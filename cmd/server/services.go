package main

import (
	"errors"
	"fmt"

	"codeberg.org/kartuli/server/api/rest/payments"
	"codeberg.org/kartuli/server/internal/bog"
	"codeberg.org/kartuli/server/internal/config"
	"codeberg.org/kartuli/server/internal/flowise"
	"codeberg.org/kartuli/server/internal/logger"
	"codeberg.org/kartuli/server/internal/tokens"
	"codeberg.org/kartuli/server/kartuli/chat"
	"codeberg.org/kartuli/server/kartuli/guests"
)

// holds all external service clients
type Services struct {
	Chat    *chat.Service
	Flowise *flowise.Client
	// nil when the payment gateway is not configured
	Payments payments.Gateway
	Guests   *guests.Manager
}

// creates and configures all service clients
func InitializeServices(cfg *config.Config, gate chat.Gate) (*Services, error) {
	flowiseClient := flowise.NewClient(cfg.Flowise)
	counter := tokens.NewCounter(tokens.DefaultEncoding)

	guestManager, err := guests.NewManager(cfg.SessionSecret, cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to create guest manager: %w", err)
	}

	services := &Services{
		Chat:    chat.NewService(gate, flowiseClient, counter),
		Flowise: flowiseClient,
		Guests:  guestManager,
	}

	bogClient, err := bog.NewClient(cfg.BOG)

	switch {
	case errors.Is(err, bog.ErrNotConfigured):
		logger.Warn("bank of georgia credentials missing, payments disabled")
	case err != nil:
		return nil, fmt.Errorf("failed to create payment client: %w", err)
	default:
		services.Payments = bogClient
	}

	return services, nil
}
