package cmd

import (
	"fmt"
	"strconv"

	"rewards/application"
	"rewards/config"
	"rewards/domain/entities"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(adjustBalanceCmd)
	adjustBalanceCmd.Flags().String("note", "manual adjustment", "Description recorded on the ledger entry")
}

var adjustBalanceCmd = &cobra.Command{
	Use:   "adjust-balance USER_ID CURRENCY DELTA",
	Short: "Apply a signed admin adjustment to a balance",
	Long: `Apply a signed admin adjustment to one balance of a user.
CURRENCY is points or tickets. A negative DELTA is a debit and is rejected
when the balance cannot cover it.`,
	Args: cobra.ExactArgs(3),
	RunE: runAdjustBalance,
}

func runAdjustBalance(cmd *cobra.Command, args []string) error {
	userID := args[0]
	currency, err := entities.ParseCurrency(args[1])
	if err != nil {
		return err
	}
	delta, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid delta %q: %w", args[2], entities.ErrInvalidAmount)
	}
	note, _ := cmd.Flags().GetString("note")

	a, err := newApp(cmd.Context(), config.Get())
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := application.NewWalletHandler(a.deps).AdjustBalance(cmd.Context(), userID, currency, delta, note)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %+d -> %d (entry %s)\n",
		userID, currency, entry.Amount, entry.BalanceAfter, entry.ID)
	return nil
}
