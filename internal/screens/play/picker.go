package play

import (
	tea "charm.land/bubbletea/v2"

	"github.com/autismart/autismart/internal/games"
	"github.com/autismart/autismart/internal/router"
	"github.com/autismart/autismart/internal/screen"
	"github.com/autismart/autismart/internal/screens"
	"github.com/autismart/autismart/internal/ui/components"
	"github.com/autismart/autismart/internal/ui/layout"
	"github.com/autismart/autismart/internal/ui/theme"
)

// PickerScreen lists the available games.
type PickerScreen struct {
	env  *screens.Env
	menu components.Menu
}

var _ screen.Screen = (*PickerScreen)(nil)

// NewPicker creates the game menu.
func NewPicker(env *screens.Env) *PickerScreen {
	p := &PickerScreen{env: env}
	var items []components.MenuItem
	for _, k := range games.AllKinds() {
		items = append(items, components.MenuItem{
			Label: k.DisplayName(),
			Hint:  k.Description(),
			Action: func() tea.Cmd {
				game := New(env, k)
				return func() tea.Msg { return router.PushScreenMsg{Screen: game} }
			},
		})
	}
	p.menu = components.NewMenu(items)
	return p
}

func (p *PickerScreen) Init() tea.Cmd {
	return nil
}

func (p *PickerScreen) Title() string {
	return "Games"
}

func (p *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	p.menu, cmd = p.menu.Update(msg)
	return p, cmd
}

func (p *PickerScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)
	content := theme.Title.Render("Pick a game") + "\n\n" + p.menu.View()
	return layout.Center(components.Panel(content, cw), width, height)
}
