package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/autismart/autismart/internal/config"
	"github.com/autismart/autismart/internal/logging"
	"github.com/autismart/autismart/internal/store"
)

var (
	v      = viper.New()
	cfg    *config.Config
	logger = logging.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "autismart",
	Short: "Behavioral observation and therapy games for caregivers",
	Long: "AutiSmart: a terminal app for caregivers and therapists: a categorized behavioral\n" +
		"observation questionnaire, support-level scoring and short therapy games.\n\n" +
		"This is a behavioral observation tool, not a medical diagnosis.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("config")
		c, err := config.Load(v, file)
		if err != nil {
			return err
		}
		cfg = c

		l, err := logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		logger = l
		logger.Debug("configuration loaded", zap.String("file", v.ConfigFileUsed()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		child, _ := cmd.Flags().GetString("child")
		return runApp(cmd, child, nil)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/autismart/autismart.yaml)")
	flags.String("db", "", "Path to SQLite database file (overrides AUTISMART_DB env var)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.Flags().StringP("child", "c", "", "Start with this child selected")

	_ = v.BindPFlag("db", flags.Lookup("db"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(childCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(insightCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	var configured string
	if cfg != nil {
		configured = cfg.DB
	}
	dbPath, err := store.Path(configured)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("database opened", zap.String("path", dbPath))
	return st, nil
}
