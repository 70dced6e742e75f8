package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/room4-2/jurgo-ivr/config"
	"github.com/room4-2/jurgo-ivr/logger"
	"github.com/room4-2/jurgo-ivr/server"
	"github.com/room4-2/jurgo-ivr/session"
	"github.com/room4-2/jurgo-ivr/vonage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := logger.New(&config.Config{})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg)

	// Create order state tracker
	sessionManager, err := session.NewManager(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session manager")
	}

	// Start cleanup routine
	ctx, cancel := context.WithCancel(context.Background())
	go sessionManager.StartCleanupRoutine(ctx)

	tokens, err := vonage.NewTokenSource(cfg.VonageApplicationID, cfg.VonagePrivateKey, cfg.VonageJWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load application credentials")
	}

	client := vonage.NewClient(vonage.ClientConfig{
		BaseURL:  cfg.VonageAPIURL,
		Timeout:  cfg.VonageTimeout,
		PageSize: cfg.EventPageSize,
	}, tokens, log)
	notifier := vonage.NewOrderNotifier(client, cfg.RecipientNumber, cfg.SenderID)

	dispatcher := server.NewDispatcher(client, notifier, sessionManager, log)
	srv := server.NewWebhookServer(cfg, dispatcher, sessionManager, log)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
		sessionManager.Shutdown()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}

	log.Info().Msg("server stopped")
}
