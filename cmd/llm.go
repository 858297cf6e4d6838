package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autismart/autismart/internal/llm"
	"github.com/autismart/autismart/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect insight requests sent to the LLM provider",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		opts := store.QueryOpts{Limit: limit}
		if purpose != "" {
			// Filtered after the query, so the limit is applied afterwards too.
			opts.Limit = 0
		}
		events, err := st.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if purpose != "" {
			events = filterPurpose(events, purpose, limit)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM events found.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-10s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("─", 96))
		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-10s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Purpose, 10),
				truncate(e.Model, 28),
				e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
		}
		return nil
	},
}

func filterPurpose(events []store.LLMEventRecord, purpose string, limit int) []store.LLMEventRecord {
	var out []store.LLMEventRecord
	for _, e := range events {
		if e.Purpose != purpose {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View the full request and response of an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		e, err := st.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		printLLMEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

func printLLMEvent(w io.Writer, e *store.LLMEventRecord) {
	fmt.Fprintf(w, "ID:        %d\n", e.ID)
	fmt.Fprintf(w, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provider:  %s\n", e.Provider)
	fmt.Fprintf(w, "Model:     %s\n", e.Model)
	fmt.Fprintf(w, "Purpose:   %s\n", e.Purpose)
	fmt.Fprintf(w, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
	fmt.Fprintf(w, "Latency:   %dms\n", e.LatencyMs)
	fmt.Fprintf(w, "Success:   %v\n", e.Success)
	if e.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:     %s\n", e.ErrorMessage)
	}

	body := func(title, s string) {
		sep := strings.Repeat("─", 60)
		fmt.Fprintf(w, "%s\n%s\n%s\n", sep, title, sep)
		if s == "" {
			s = "(not captured)"
		}
		fmt.Fprintln(w, s)
	}
	fmt.Fprintln(w)
	body("REQUEST", e.RequestBody)
	body("RESPONSE", e.ResponseBody)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		events := st.EventRepo()
		byPurpose, err := events.LLMUsageByPurpose(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}
		printUsage(out, byPurpose)

		byModel, err := events.LLMUsageByModel(cmd.Context())
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(byModel) > 0 {
			fmt.Fprintln(out)
			printCost(out, byModel)
		}
		return nil
	},
}

func printUsage(w io.Writer, usage []store.LLMUsage) {
	rule := strings.Repeat("─", 72)
	fmt.Fprintf(w, "Usage by Purpose\n%s\n", rule)
	fmt.Fprintf(w, "%-16s  %6s  %10s  %10s  %10s  %8s\n%s\n",
		"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms", rule)

	var calls, in, outTok int
	for _, u := range usage {
		fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d  %8d\n",
			truncate(u.Key, 16), u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		outTok += u.OutputTokens
	}
	fmt.Fprintf(w, "%s\n%-16s  %6d  %10d  %10d  %10d\n", rule, "TOTAL", calls, in, outTok, in+outTok)
}

func printCost(w io.Writer, usage []store.LLMUsage) {
	rule := strings.Repeat("─", 72)
	fmt.Fprintf(w, "Estimated Cost (USD)\n%s\n", rule)
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n%s\n", "Model", "Calls", "Input", "Output", "Cost", rule)

	var total float64
	var unknown []string
	for _, u := range usage {
		cost := llm.LookupCost(u.Key)
		if cost == nil {
			unknown = append(unknown, u.Key)
			fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
				truncate(u.Key, 32), u.Calls, u.InputTokens, u.OutputTokens, "?")
			continue
		}
		c := cost.Cost(u.InputTokens, u.OutputTokens)
		total += c
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
			truncate(u.Key, 32), u.Calls, u.InputTokens, u.OutputTokens, formatCost(c))
	}

	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%s\n%-32s  %6s  %10s  %10s  %10s\n", rule, label, "", "", "", formatCost(total))
	if len(unknown) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. insight)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
