package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/finpal/server/internal/config"
	"codeberg.org/finpal/server/internal/logger"
)

// @title finpal API
// @version 1.0
// @description AI usage metering for the finpal personal-finance dashboard
// @description
// @description Features:
// @description - Shared daily AI quota across predictions, insights and chatbot
// @description - Per-user, per-day usage status with reset countdown

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Access token issued by the auth provider. Format: Bearer {token}

func main() {
	logger.Info("starting finpal server")

	flags := config.ParseServerFlags(os.Args[1:])

	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	if flags.Port != "" {
		cfg.Port = flags.Port
	}

	// cancelled on shutdown; stops background loops
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	srv, err := NewServer(appCtx, cfg, flags)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	appCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	if srv.retention != nil {
		srv.retention.Stop()
	}

	srv.store.Close()

	logger.Info("server stopped")
}
