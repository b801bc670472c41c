package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/eastboundjoe/aviation-study-guide/internal/app"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/shared"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the study dashboard (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

// runDashboard loads the learner and launches the TUI.
func runDashboard(cmd *cobra.Command) error {
	ctx := cmd.Context()
	rt, l, cleanup, err := loadLearner(cmd, io.Discard)
	if err != nil {
		return err
	}
	defer cleanup()

	noSplash, _ := cmd.Flags().GetBool("no-splash")
	return app.Run(ctx, app.Options{
		Learner: l,
		Env: shared.Env{
			Catalog: rt.catalog,
			Grader:  rt.grader(ctx),
		},
		ShowSync: l.Identity != "" && rt.adapter.RemoteEnabled(),
		Splash:   !noSplash,
		Logger:   rt.logger,
	})
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, dashboardCmd} {
		c.Flags().Bool("no-splash", false, "Skip the welcome animation")
	}
}
