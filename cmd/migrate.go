package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eastboundjoe/aviation-study-guide/internal/persist"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Move guest progress on this device into an account",
	Long: "Copy the guest progress stored on this device to the row store under --as. " +
		"Accounts that already have remote progress keep it and the device copy is left alone.",
	RunE: func(cmd *cobra.Command, args []string) error {
		id := identityFlag(cmd)
		if id == "" {
			return fmt.Errorf("--as is required")
		}
		rt, err := openRuntime(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer rt.Close()

		if !rt.adapter.RemoteEnabled() {
			return fmt.Errorf("no row store configured; set DATABASE_URL")
		}
		reg := rt.registry()
		defer reg.Close()
		res, err := reg.Migrate(cmd.Context(), id)
		if err != nil {
			return err
		}
		switch res.Status {
		case persist.MigrationCompleted:
			fmt.Printf("Migrated %d chapters and %d sessions to %s\n", res.Chapters, res.Sessions, id)
		case persist.MigrationNoLocalData:
			fmt.Println("No guest progress on this device.")
		case persist.MigrationRemoteWins:
			fmt.Printf("%s already has progress; the device copy was kept.\n", id)
		default:
			fmt.Println(res.Status)
		}
		return nil
	},
}
