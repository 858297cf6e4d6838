package home

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/ui/theme"
)

// MascotVariant is the puzzle buddy's mood on the home screen.
type MascotVariant int

const (
	MascotIdle    MascotVariant = iota // nothing done today
	MascotCheer                        // played or assessed today
	MascotWaiting                      // an assessment can be resumed
)

type mascotPose struct {
	art string
	fg  color.Color
}

var mascotPoses = map[MascotVariant]mascotPose{
	MascotIdle: {fg: theme.Secondary, art: "" +
		"╭─────╮\n" +
		"│ ◠ ◠ │\n" +
		"│  ‿  │\n" +
		"╰─────╯"},
	MascotCheer: {fg: theme.Accent, art: "" +
		"╭─────╮\n" +
		"│ ^ ^ │ ♪\n" +
		"│  ◡  │\n" +
		"╰─────╯"},
	MascotWaiting: {fg: theme.Primary, art: "" +
		"╭─────╮\n" +
		"│ ◠ ◠ │ …\n" +
		"│  ‿  │\n" +
		"╰─────╯"},
}

func RenderMascot(v MascotVariant) string {
	pose, ok := mascotPoses[v]
	if !ok {
		pose = mascotPoses[MascotIdle]
	}
	return lipgloss.NewStyle().Foreground(pose.fg).Render(pose.art)
}
