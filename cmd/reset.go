package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all scheduling state so every card is new again",
	Long: `Delete every card's scheduling state. The review log is kept.

Requires --yes.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}

func runReset(cmd *cobra.Command, args []string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return errors.New("refusing to reset without --yes")
	}

	e, err := openEnv(cmd, false, false)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.store.ReviewStateRepo().Reset(cmd.Context()); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	e.log.Info("scheduling state cleared")
	fmt.Fprintln(cmd.OutOrStdout(), "All cards are new again.")
	return nil
}
