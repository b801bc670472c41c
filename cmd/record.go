package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/spacedrep"
)

var recordCmd = &cobra.Command{
	Use:   "record <book> <chapter>",
	Short: "Record a chapter review outcome",
	Long:  "Record a pass (default) or --fail for a chapter and reschedule its next review.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, l, cleanup, err := loadLearner(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer cleanup()

		b, ch, err := parseChapter(rt.catalog, args[0], args[1])
		if err != nil {
			return err
		}
		failed, _ := cmd.Flags().GetBool("fail")

		key := progress.Key{Book: b.Title, Chapter: ch.ID}
		snap := l.Tracker.RecordOutcome(cmd.Context(), key, !failed)
		rec := snap.Record(key)
		now := l.Tracker.Now()

		verdict := "passed"
		if failed {
			verdict = "failed"
		}
		fmt.Printf("%s · Ch %d %s: %s\n", b.Title, ch.ID, ch.Title, verdict)
		fmt.Printf("Level:       %d (%s)\n", rec.Level, spacedrep.Label(rec.Level))
		fmt.Printf("Next review: %s (%s)\n", rec.NextReview.Local().Format("Mon Jan 2"), relativeDays(rec.NextReview, now))
		return nil
	},
}

// relativeDays renders a review date as "today", "tomorrow" or "in N days".
func relativeDays(next, now time.Time) string {
	switch d := spacedrep.DaysUntil(next, now); {
	case d <= 0:
		return "today"
	case d == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", d)
	}
}

func init() {
	recordCmd.Flags().Bool("fail", false, "Record a failed review")
}
