package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/autismart/autismart/internal/store"
)

var childCmd = &cobra.Command{
	Use:   "child",
	Short: "Manage the children assessments are recorded for",
}

var childAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a child",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("a name is required")
		}
		year, _ := cmd.Flags().GetInt("birth-year")
		notes, _ := cmd.Flags().GetString("notes")
		if year != 0 && (year < 1900 || year > time.Now().Year()) {
			return fmt.Errorf("birth year must be between 1900 and %d", time.Now().Year())
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		c := &store.Child{Name: name, BirthYear: year, Notes: notes, CreatedAt: time.Now().UTC()}
		if err := st.ChildRepo().Create(cmd.Context(), c); err != nil {
			return fmt.Errorf("add child: %w", err)
		}
		logger.Info("child created", zap.String("child_id", c.ID))
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", c.Name, c.ID)
		return nil
	},
}

var childListCmd = &cobra.Command{
	Use:   "list",
	Short: "List children",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		children, err := st.ChildRepo().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list children: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(children) == 0 {
			fmt.Fprintln(out, "No children yet. Add one with: autismart child add <name>")
			return nil
		}

		fmt.Fprintf(out, "%-24s  %-10s  %-10s  %s\n", "Name", "Born", "Added", "ID")
		fmt.Fprintln(out, strings.Repeat("─", 84))
		for _, c := range children {
			born := "-"
			if c.BirthYear > 0 {
				born = fmt.Sprintf("%d", c.BirthYear)
			}
			fmt.Fprintf(out, "%-24s  %-10s  %-10s  %s\n",
				truncate(c.Name, 24), born, c.CreatedAt.Local().Format("2006-01-02"), c.ID)
		}
		return nil
	},
}

var childRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a child and everything recorded for them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("this deletes every activity recorded for %s; rerun with --yes to confirm", args[0])
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		repo := st.ChildRepo()
		c, err := repo.FindByName(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("find child %q: %w", args[0], err)
		}
		if err := repo.Delete(cmd.Context(), c.ID); err != nil {
			return fmt.Errorf("remove child: %w", err)
		}
		logger.Info("child removed", zap.String("child_id", c.ID))
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", c.Name)
		return nil
	},
}

func init() {
	childAddCmd.Flags().Int("birth-year", 0, "Year of birth")
	childAddCmd.Flags().String("notes", "", "Free-form notes")
	childRemoveCmd.Flags().Bool("yes", false, "Confirm deletion")

	childCmd.AddCommand(childAddCmd)
	childCmd.AddCommand(childListCmd)
	childCmd.AddCommand(childRemoveCmd)
}
