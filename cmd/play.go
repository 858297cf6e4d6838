package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autismart/autismart/internal/games"
	"github.com/autismart/autismart/internal/screen"
	"github.com/autismart/autismart/internal/screens"
	"github.com/autismart/autismart/internal/screens/play"
)

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Jump straight into a therapy game",
	Long:  "Start a game directly. Games: " + strings.Join(gameNames(), ", "),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, ok := games.ParseKind(args[0])
		if !ok {
			return fmt.Errorf("unknown game %q (choose from %s)", args[0], strings.Join(gameNames(), ", "))
		}
		childName, _ := cmd.Flags().GetString("child")
		return runApp(cmd, childName, func(env *screens.Env) screen.Screen {
			return play.New(env, kind)
		})
	},
}

func gameNames() []string {
	var names []string
	for _, k := range games.AllKinds() {
		names = append(names, string(k))
	}
	return names
}

func init() {
	playCmd.Flags().StringP("child", "c", "", "Record the game for this child")
}
