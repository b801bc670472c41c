package cmd

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eastboundjoe/aviation-study-guide/internal/llm"
	"github.com/eastboundjoe/aviation-study-guide/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

// openEventStore opens only the device database; the llm commands don't
// need configuration or the row store.
func openEventStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 100))

		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Purpose, 14),
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		sep := strings.Repeat("─", 60)

		fmt.Printf("ID:        %d\n", e.ID)
		fmt.Printf("Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Provider:  %s\n", e.Provider)
		fmt.Printf("Model:     %s\n", e.Model)
		fmt.Printf("Purpose:   %s\n", e.Purpose)
		fmt.Printf("Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Printf("Latency:   %dms\n", e.LatencyMs)
		fmt.Printf("Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", e.ErrorMessage)
		}

		for _, part := range []struct{ title, body string }{
			{"REQUEST", e.RequestBody},
			{"RESPONSE", e.ResponseBody},
		} {
			fmt.Println()
			fmt.Println(sep)
			fmt.Println(part.title)
			fmt.Println(sep)
			if part.body != "" {
				fmt.Println(part.body)
			} else {
				fmt.Println("(not captured)")
			}
		}
		return nil
	},
}

// usage aggregates events sharing a purpose or model.
type usage struct {
	name         string
	calls        int
	failures     int
	inputTokens  int
	outputTokens int
	latencyMs    int64
}

func aggregateUsage(events []store.LLMRequestEvent, by func(store.LLMRequestEvent) string) []usage {
	idx := make(map[string]int)
	var out []usage
	for _, e := range events {
		name := by(e)
		i, ok := idx[name]
		if !ok {
			i = len(out)
			idx[name] = i
			out = append(out, usage{name: name})
		}
		u := &out[i]
		u.calls++
		if !e.Success {
			u.failures++
		}
		u.inputTokens += e.InputTokens
		u.outputTokens += e.OutputTokens
		u.latencyMs += e.LatencyMs
	}
	slices.SortFunc(out, func(a, b usage) int {
		return cmp.Or(cmp.Compare(b.calls, a.calls), cmp.Compare(a.name, b.name))
	})
	return out
}

func printUsage(title string, rows []usage) {
	fmt.Println(title)
	fmt.Println(strings.Repeat("─", 80))
	fmt.Printf("%-28s  %6s  %6s  %10s  %10s  %8s\n", "Name", "Calls", "Failed", "Input", "Output", "Avg Ms")
	fmt.Println(strings.Repeat("─", 80))
	for _, u := range rows {
		fmt.Printf("%-28s  %6d  %6d  %10d  %10d  %8d\n",
			truncate(u.name, 28), u.calls, u.failures, u.inputTokens, u.outputTokens, u.latencyMs/int64(u.calls))
	}
}

// printCost estimates spend per model. Models without a price are listed
// separately and the total is marked partial.
func printCost(byModel []usage) {
	fmt.Println("Estimated Cost (USD)")
	fmt.Println(strings.Repeat("─", 60))

	var total float64
	var unknown []string
	for _, u := range byModel {
		cost := llm.LookupCost(u.name)
		if cost == nil {
			unknown = append(unknown, u.name)
			fmt.Printf("%-32s  %10s\n", truncate(u.name, 32), "?")
			continue
		}
		c := cost.Cost(u.inputTokens, u.outputTokens)
		total += c
		fmt.Printf("%-32s  %10s\n", truncate(u.name, 32), formatCost(c))
	}

	fmt.Println(strings.Repeat("─", 60))
	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Printf("%-32s  %10s\n", label, formatCost(total))
	if len(unknown) > 0 {
		fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
	}
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		printUsage("Usage by Purpose", aggregateUsage(events, func(e store.LLMRequestEvent) string { return e.Purpose }))
		fmt.Println()
		byModel := aggregateUsage(events, func(e store.LLMRequestEvent) string { return e.Model })
		printUsage("Usage by Model", byModel)
		fmt.Println()
		printCost(byModel)
		return nil
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. recall-grading)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
