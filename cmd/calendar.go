package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/components"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the study activity heatmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, l, cleanup, err := loadLearner(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer cleanup()

		weeks, _ := cmd.Flags().GetInt("weeks")
		if weeks <= 0 {
			return fmt.Errorf("--weeks must be positive")
		}
		now := l.Tracker.Now()
		// Start on a Sunday so the grid has whole week columns.
		days := progress.CalendarDays(l.Tracker.Snapshot().History, now, (weeks-1)*7+int(now.Weekday())+1)

		fmt.Println(components.Heatmap(days))
		fmt.Printf("\n%d days studied in the last %d weeks\n", progress.DaysStudied(days), weeks)
		return nil
	},
}

func init() {
	calendarCmd.Flags().IntP("weeks", "w", 12, "Number of weeks to show")
}
