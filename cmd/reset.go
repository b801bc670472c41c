package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase the guest progress stored on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("this erases all guest progress on this device; rerun with --yes")
		}
		rt, err := openRuntime(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.local.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clear local progress: %w", err)
		}
		fmt.Println("Local progress cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
