/*
Package main is the entry point for the Anonymous Chat widget.

It is responsible for loading configuration, initializing the global logging system,
opening the local and shared stores, loading the device identity, running the chat
session, serving the widget API, and gracefully handling operating system interrupt
signals (SIGINT, SIGTERM) to ensure a smooth shutdown.
*/
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

	"github.com/joho/godotenv"

	"anonchat/internal/app/identity"
	"anonchat/internal/app/payment"
	"anonchat/internal/app/session"
	"anonchat/internal/app/storage"
	"anonchat/internal/configs"
	"anonchat/internal/handler"
	"anonchat/internal/pkg/logx"
)

func main() {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("shared_store", string(cfg.SharedStore)).
		Str("payment_mode", cfg.PaymentMode).
		Msg("Configuration loaded successfully")

	if err := run(cfg); err != nil {
		logx.Fatal(err, "Anonymous Chat stopped with an error")
	}
}

// run serves the widget until an interrupt signal arrives. Every store it opened is closed
// before it returns, also on startup failures.
func run(cfg *configs.AppConfig) error {
	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	local, err := storage.OpenLocal(ctx, cfg.LocalStorePath)
	if err != nil {
		return fmt.Errorf("failed to open local store %s: %w", cfg.LocalStorePath, err)
	}
	defer closeStore("local", local)

	shared, err := storage.OpenShared(ctx, cfg.StorageConfig(), local)
	if err != nil {
		return fmt.Errorf("failed to open %s shared store: %w", cfg.SharedStore, err)
	}
	defer closeStore("shared", shared)

	user, err := identity.LoadOrCreate(ctx, local)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}
	logx.Info("Identity loaded", "user_id", user.UserID, "username", user.Username)

	chatSession := session.New(user, session.Stores{Local: local, Shared: shared}, newCollaborator(cfg), session.Options{
		PollInterval:   cfg.PollInterval,
		FreeAccess:     cfg.FreeAccess,
		PaidAccess:     cfg.PaidAccess,
		SuccessDisplay: cfg.PaymentSuccessDisplay,
		StorageTimeout: cfg.StorageTimeout,
		Charge: payment.Charge{
			Amount:      cfg.PriceAmount,
			Currency:    cfg.PriceCurrency,
			Name:        payment.DefaultCharge.Name,
			Description: payment.DefaultCharge.Description,
		},
	})
	go chatSession.Run(ctx)

	defer func() {
		chatSession.Stop()
		<-chatSession.Done()
	}()

	// Setup HTTP server and routes
	router := handler.Router(&handler.AppDeps{
		Session: chatSession,
		Config:  cfg,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logx.Info(fmt.Sprintf("Anonymous Chat starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
	return nil
}

func newCollaborator(cfg *configs.AppConfig) payment.Collaborator {
	if cfg.PaymentMode == configs.PaymentDisabled {
		return payment.Disabled{}
	}
	return payment.Simulated{Delay: cfg.PaymentDelay}
}

func closeStore(name string, store storage.Store) {
	if err := store.Close(); err != nil {
		logx.Error(err, "Failed to close store", "store", name)
	}
}
