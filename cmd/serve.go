package cmd

import (
	"fmt"
	"time"

	"rewards/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (defaults to HTTP_ADDR)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Get()
	log.WithField("environment", cfg.Environment).Info("Starting rewards service...")

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.HTTPAddr
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.newServer().ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}

	start := time.Now()
	log.Info("Shutting down rewards service...")
	a.Close()
	log.WithField("duration", time.Since(start)).Info("Shutdown completed")
	return nil
}
