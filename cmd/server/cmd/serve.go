package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"account-ledger/internal/config"
	"account-ledger/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ledger HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := cfg.NewLogger()
		slog.SetDefault(logger)

		srv, err := server.NewServer(cfg, logger)
		if err != nil {
			logger.Error("Failed to create server", "error", err)
			return err
		}

		port, err := srv.Start(cfg.ServerPort)
		if err != nil {
			logger.Error("Failed to start server", "error", err)
			return err
		}
		logger.Info("Server started successfully", "port", port, "store", cfg.Store)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", "error", err)
			return err
		}

		logger.Info("Server stopped")
		return nil
	},
}
