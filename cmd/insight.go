package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/autismart/autismart/internal/insights"
)

var insightCmd = &cobra.Command{
	Use:   "insight <answers-file>",
	Short: "Generate caregiver guidance for a completed answers file",
	Long: "Score an answers file and ask the configured LLM provider for caregiver\n" +
		"guidance. Falls back to built-in suggestions when no provider is available.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer d.Close()

		_, report, err := scoreFile(d.catalog, args[0])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		in, err := d.insights.Generate(ctx, report)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Guidance service unavailable:", err)
		}
		printReport(cmd.OutOrStdout(), report)
		fmt.Fprintln(cmd.OutOrStdout())
		printInsight(cmd.OutOrStdout(), in)
		return nil
	},
}

func printInsight(w io.Writer, in *insights.Insight) {
	if in == nil {
		return
	}
	fmt.Fprintf(w, "Guidance (%s)\n\n", in.Source)
	fmt.Fprintln(w, in.Summary)
	printList(w, "Strengths", in.Strengths)
	printList(w, "Focus areas", in.FocusAreas)
	printList(w, "Try at home", in.Activities)
	fmt.Fprintln(w)
	fmt.Fprintln(w, in.Disclaimer)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  • %s\n", item)
	}
}
