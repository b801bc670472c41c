package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eastboundjoe/aviation-study-guide/internal/config"
	"github.com/eastboundjoe/aviation-study-guide/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "studyguide",
	Short: "Spaced-repetition study guide for aviation handbooks",
	Long: "studyguide tracks chapter reviews across the FAA handbooks, schedules them on a " +
		"1-3-7-14-30 day ladder and checks recall by grading spoken summaries.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

// Execute runs the command tree. Interrupts cancel the command context so
// the server and the dashboard shut down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYGUIDE_DB env var)")
	rootCmd.PersistentFlags().String("as", "", "Learner identity; empty studies as the guest on this device")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(recallCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then STUDYGUIDE_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

func identityFlag(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("as")
	return id
}
