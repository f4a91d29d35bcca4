package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/kartuli/server/internal/config"
	"codeberg.org/kartuli/server/internal/logger"
)

// @title Kartuli API
// @version 1.0
// @description Backend for a Georgian-language AI chat assistant
// @description
// @description Features:
// @description - Chat and image generation through Flowise chatflows
// @description - Daily and monthly token quotas for guests and signed-in users
// @description - Email/password and OAuth sign-in (Google, GitHub)
// @description - Premium plan purchase through the Bank of Georgia gateway

// @contact.name API Support
// @contact.url https://codeberg.org/kartuli/server

// @host api.kartuli.ai

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authenticated requests. Format: Bearer {token}

func main() {
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.FatalErr(err, "failed to load configuration")
	}

	logger.Setup(cfg.Environment)
	logger.Info("starting kartuli server", "environment", cfg.Environment)

	srv, err := NewServer(cfg)
	if err != nil {
		logger.FatalErr(err, "failed to create server")
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// chat replies wait on the model, keep this above the flowise timeout
		WriteTimeout: cfg.Flowise.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalErr(err, "server failed to start")
		}
	}()

	go srv.hub.Run()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// notify websocket clients and close connections first
	srv.hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.ErrorErr(err, "server forced to shutdown")
	}

	srv.Close()

	logger.Info("server stopped")
}
