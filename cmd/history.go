package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autismart/autismart/internal/activity"
	"github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded assessments and games",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := activityFilter(cmd)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		names, err := childNames(cmd, st)
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("child"); name != "" {
			c, err := st.ChildRepo().FindByName(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("find child %q: %w", name, err)
			}
			f.ChildID = c.ID
		}

		recs, err := st.ActivityRepo().Query(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("query activities: %w", err)
		}
		printHistory(cmd.OutOrStdout(), recs, names)
		return nil
	},
}

// activityFilter reads the --type and --limit flags shared by history and export.
func activityFilter(cmd *cobra.Command) (store.ActivityFilter, error) {
	var f store.ActivityFilter
	switch t, _ := cmd.Flags().GetString("type"); t {
	case "":
	case string(activity.TypeAssessment), string(activity.TypeGame):
		f.Type = activity.Type(t)
	default:
		return f, fmt.Errorf("unknown activity type %q (want assessment or game)", t)
	}
	f.Limit, _ = cmd.Flags().GetInt("limit")
	if f.Limit < 0 {
		return f, fmt.Errorf("--limit must not be negative")
	}
	return f, nil
}

func childNames(cmd *cobra.Command, st *store.Store) (map[string]string, error) {
	children, err := st.ChildRepo().List(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	names := make(map[string]string, len(children))
	for _, c := range children {
		names[c.ID] = c.Name
	}
	return names, nil
}

func printHistory(w io.Writer, recs []activity.Record, names map[string]string) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No activity recorded yet.")
		return
	}

	fmt.Fprintf(w, "%-16s  %-16s  %-24s  %9s  %7s  %s\n",
		"When", "Child", "Activity", "Score", "Percent", "Result")
	fmt.Fprintln(w, strings.Repeat("─", 96))

	hasAssessment := false
	for _, r := range recs {
		result := ""
		switch r.Type {
		case activity.TypeAssessment:
			hasAssessment = true
			if lvl, ok := r.Details["support_level"].(string); ok {
				result = assessment.SupportLevel(lvl).DisplayName()
			}
		case activity.TypeGame:
			result = fmt.Sprintf("level %v", r.Details["level"])
		}
		fmt.Fprintf(w, "%-16s  %-16s  %-24s  %4d/%-4d  %6.1f%%  %s\n",
			r.RecordedAt.Local().Format("2006-01-02 15:04"),
			truncate(names[r.ChildID], 16),
			truncate(r.Name, 24),
			r.Score, r.MaxScore, r.Percentage, result)
	}

	if hasAssessment {
		fmt.Fprintf(w, "\n%s\n", assessment.Disclaimer)
	}
}

func init() {
	historyCmd.Flags().StringP("child", "c", "", "Only show this child's activity")
	historyCmd.Flags().String("type", "", "Only show assessment or game records")
	historyCmd.Flags().Int("limit", 20, "Maximum records to show (0 = all)")
}
