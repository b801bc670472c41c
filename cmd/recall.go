package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/recall"
)

var recallCmd = &cobra.Command{
	Use:   "recall <book> <chapter> [summary...]",
	Short: "Grade a spoken summary against a chapter checkpoint",
	Long: "Grade a summary against the chapter's key points. The summary is read from the " +
		"arguments, or from stdin when none are given. With --record the outcome is saved.",
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, l, cleanup, err := loadLearner(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer cleanup()

		b, ch, err := parseChapter(rt.catalog, args[0], args[1])
		if err != nil {
			return err
		}
		key := progress.Key{Book: b.Title, Chapter: ch.ID}
		cp, ok := rt.catalog.Checkpoint(key)
		if !ok {
			return fmt.Errorf("%s · Ch %d has no recall checkpoint", b.Title, ch.ID)
		}

		transcript := strings.Join(args[2:], " ")
		if transcript == "" {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read summary: %w", err)
			}
			transcript = string(raw)
		}
		if strings.TrimSpace(transcript) == "" {
			return fmt.Errorf("summary is empty")
		}

		res := rt.grader(ctx).Grade(ctx, recall.Request{
			BookTitle:    b.Title,
			ChapterTitle: ch.Title,
			KeyPoints:    cp.KeyPoints,
			Transcript:   transcript,
		})
		covered := recall.MergeCovered(cp.KeyPoints, res.CoveredPointIDs)
		passed := content.CheckpointPassed(cp.KeyPoints, covered)

		for _, kp := range cp.KeyPoints {
			mark := "○"
			for _, id := range covered {
				if id == kp.ID {
					mark = "●"
					break
				}
			}
			fmt.Printf("%s %s\n", mark, kp.Text)
		}
		fmt.Println()
		if res.Feedback != "" {
			fmt.Println(res.Feedback)
		}
		if res.Clue != "" && !passed {
			fmt.Println("Hint:", res.Clue)
		}
		fmt.Printf("\nCovered %d of %d key points (graded by %s)\n", len(covered), len(cp.KeyPoints), res.Source)

		if record, _ := cmd.Flags().GetBool("record"); record {
			rec := l.Tracker.RecordOutcome(ctx, key, passed).Record(key)
			fmt.Printf("Recorded %s; next review %s\n", passFail(passed), relativeDays(rec.NextReview, l.Tracker.Now()))
		}
		return nil
	},
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func init() {
	recallCmd.Flags().Bool("record", false, "Record the result as a review outcome")
}
