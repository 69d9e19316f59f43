package cmd

import (
	"context"
	"io"

	"rewards/config"
	"rewards/infrastructure"

	"github.com/spf13/cobra"
)

var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:           "rewards",
	Short:         "Rewards ledger service",
	Long:          `Rewards ledger service: points and tickets balances, missions, prize entries with a pity guarantee and point redemptions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		closer, err := infrastructure.ConfigureLogging(config.Get())
		if err != nil {
			return err
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

// Execute runs the command line with ctx cancelled on shutdown signals
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
