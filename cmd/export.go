package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/autismart/autismart/internal/activity"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded activities as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := activity.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		f, err := activityFilter(cmd)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

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

		var w io.Writer = cmd.OutOrStdout()
		output, _ := cmd.Flags().GetString("output")
		if output != "" {
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer file.Close()
			w = file
		}

		if err := activity.Export(w, recs, format); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		logger.Info("activities exported",
			zap.Int("count", len(recs)),
			zap.String("format", string(format)),
			zap.String("output", output))
		if output != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d activities to %s\n", len(recs), output)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("child", "c", "", "Only export this child's activity")
	exportCmd.Flags().String("type", "", "Only export assessment or game records")
	exportCmd.Flags().Int("limit", 0, "Maximum records to export (0 = all)")
	exportCmd.Flags().String("format", "yaml", "Output format: yaml or json")
	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
}
