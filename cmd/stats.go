package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study statistics and today's review schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, l, cleanup, err := loadLearner(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer cleanup()

		snap := l.Tracker.Snapshot()
		now := l.Tracker.Now()
		st := snap.Summarize(now)

		fmt.Printf("Chapters completed: %d\n", st.Completed)
		fmt.Printf("Due today:          %d\n", st.DueToday)
		fmt.Printf("Mastered:           %d\n", st.Mastered)
		fmt.Printf("Sessions:           %d\n", st.Sessions)
		fmt.Printf("Days active:        %d\n", st.DaysActive)

		fmt.Println()
		fmt.Println("Review Schedule")
		fmt.Println(strings.Repeat("─", 60))
		for _, col := range snap.Schedule(now) {
			fmt.Printf("%-16s  %d\n", col.Title, len(col.Due))
			for _, k := range col.Due {
				fmt.Printf("  %s · Ch %d\n", k.Book, k.Chapter)
			}
		}

		fmt.Println()
		fmt.Println("Books")
		fmt.Println(strings.Repeat("─", 60))
		for _, b := range rt.catalog.Books() {
			pct := snap.BookCompletion(b.Title, b.ChapterIDs())
			fmt.Printf("%-44s  %3.0f%%\n", truncate(b.Title, 44), pct*100)
		}
		return nil
	},
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List chapters due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, l, cleanup, err := loadLearner(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer cleanup()

		snap := l.Tracker.Snapshot()
		keys := snap.DueKeys(l.Tracker.Now())
		if len(keys) == 0 {
			fmt.Println("Nothing due. Clear skies.")
			return nil
		}
		for _, k := range keys {
			printDue(k, snap.Record(k))
		}
		return nil
	},
}

func printDue(k progress.Key, rec progress.MasteryRecord) {
	fmt.Printf("%-40s  Ch %-3d  level %d\n", truncate(k.Book, 40), k.Chapter, rec.Level)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
