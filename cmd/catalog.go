package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autismart/autismart/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate questionnaire catalogs",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the levels and categories of the active catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalog.Resolve(cfg.Catalog.Dir, cfg.Catalog.Pattern)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		printCatalog(cmd.OutOrStdout(), c)
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate every catalog pack under a directory",
	Long: "Parse and validate every file under dir (default: catalog.dir) that matches\n" +
		"--pattern. Without a directory the built-in catalog is checked.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Catalog.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		pattern, _ := cmd.Flags().GetString("pattern")
		if pattern == "" {
			pattern = cfg.Catalog.Pattern
		}

		out := cmd.OutOrStdout()
		if dir == "" {
			if err := catalog.Validate(catalog.Default()); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ built-in catalog: %d questions\n", catalog.Default().Total())
			return nil
		}

		packs, err := catalog.LoadDir(dir, pattern)
		if err != nil {
			return err
		}
		if len(packs) == 0 {
			return fmt.Errorf("no files in %s match %q", dir, pattern)
		}
		for _, p := range packs {
			fmt.Fprintf(out, "✓ %s: %d levels, %d questions\n", p.Path, len(p.Catalog.Levels), p.Catalog.Total())
		}
		return nil
	},
}

func printCatalog(w io.Writer, c *catalog.Catalog) {
	fmt.Fprintf(w, "%-14s  %-32s  %s\n", "Level", "Title", "Questions")
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, l := range c.Levels {
		fmt.Fprintf(w, "%-14s  %-32s  %9d\n", l.Key, truncate(l.Title, 32), len(l.Questions))
	}
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "%-14s  %-32s  %9d\n", "TOTAL", "", c.Total())

	fmt.Fprintln(w)
	counts := c.CountByCategory()
	fmt.Fprintf(w, "%-30s  %s\n", "Category", "Questions")
	fmt.Fprintln(w, strings.Repeat("─", 42))
	for _, cat := range catalog.AllCategories() {
		fmt.Fprintf(w, "%s %-27s  %9d\n", cat.Icon(), cat.DisplayName(), counts[cat])
	}
}

func init() {
	catalogValidateCmd.Flags().String("pattern", "", "Glob for pack files (default: catalog.pattern)")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
