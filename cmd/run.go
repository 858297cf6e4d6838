package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/autismart/autismart/internal/app"
	"github.com/autismart/autismart/internal/screen"
	"github.com/autismart/autismart/internal/screens"
)

// runApp launches the TUI. childName preselects a child; start, when
// set, opens a screen above home instead of the welcome splash.
func runApp(cmd *cobra.Command, childName string, start func(*screens.Env) screen.Screen) error {
	d, err := openDeps(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer d.Close()

	env := d.env()
	if childName != "" {
		if env.Child, err = d.findChild(cmd.Context(), childName); err != nil {
			return err
		}
	}

	var opts []app.Option
	if start != nil {
		opts = append(opts, app.WithStart(start(env)))
	}
	logger.Info("starting tui", zap.String("version", version), zap.String("child", env.ChildName()))
	return app.Run(env, opts...)
}
