// Package childpicker lets the caregiver choose or add the child that
// assessments and games are recorded for.
package childpicker

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/autismart/autismart/internal/router"
	"github.com/autismart/autismart/internal/screen"
	"github.com/autismart/autismart/internal/screens"
	"github.com/autismart/autismart/internal/store"
	"github.com/autismart/autismart/internal/ui/components"
	"github.com/autismart/autismart/internal/ui/layout"
	"github.com/autismart/autismart/internal/ui/theme"
)

type mode int

const (
	modeList mode = iota
	modeName
	modeYear
)

type childrenLoadedMsg struct {
	Children []store.Child
	Err      error
}

type childCreatedMsg struct {
	Child *store.Child
	Err   error
}

// PickerScreen lists known children and creates new ones.
type PickerScreen struct {
	env  *screens.Env
	next func() screen.Screen

	mode     mode
	children []store.Child
	menu     components.Menu
	name     components.TextInput
	year     components.TextInput
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*PickerScreen)(nil)
var _ screen.KeyHintProvider = (*PickerScreen)(nil)
var _ screen.EscapeHandler = (*PickerScreen)(nil)

// New creates a picker. After a child is chosen the picker is replaced by
// next(), or popped when next is nil.
func New(env *screens.Env, next func() screen.Screen) *PickerScreen {
	return &PickerScreen{env: env, next: next}
}

func (p *PickerScreen) Title() string {
	return "Choose Child"
}

func (p *PickerScreen) Init() tea.Cmd {
	repo := p.env.Children
	return func() tea.Msg {
		if repo == nil {
			return childrenLoadedMsg{}
		}
		children, err := repo.List(context.Background())
		return childrenLoadedMsg{Children: children, Err: err}
	}
}

func (p *PickerScreen) KeyHints() []layout.KeyHint {
	if p.mode != modeList {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

// HandlesEscape keeps esc inside the form while adding a child.
func (p *PickerScreen) HandlesEscape() bool {
	return p.mode != modeList
}

func (p *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case childrenLoadedMsg:
		p.loaded = true
		if msg.Err != nil {
			p.errMsg = msg.Err.Error()
			return p, nil
		}
		p.children = msg.Children
		p.menu = p.buildMenu()
		return p, nil

	case childCreatedMsg:
		if msg.Err != nil {
			p.mode = modeName
			p.name.Err = msg.Err.Error()
			return p, p.name.Focus()
		}
		p.env.Log().Info("child created", zap.String("child_id", msg.Child.ID))
		return p, p.choose(msg.Child)

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	return p, nil
}

func (p *PickerScreen) buildMenu() components.Menu {
	items := make([]components.MenuItem, 0, len(p.children)+1)
	for i := range p.children {
		c := p.children[i]
		hint := ""
		if c.BirthYear > 0 {
			hint = fmt.Sprintf("born %d", c.BirthYear)
		}
		items = append(items, components.MenuItem{
			Label: c.Name,
			Hint:  hint,
			Action: func() tea.Cmd {
				return p.choose(&c)
			},
		})
	}
	items = append(items, components.MenuItem{
		Label:  "+ Add a child",
		Action: p.startAdd,
	})
	m := components.NewMenu(items)
	if cur := p.env.ChildID(); cur != "" {
		for i, c := range p.children {
			if c.ID == cur {
				m.Selected = i
			}
		}
	}
	return m
}

func (p *PickerScreen) startAdd() tea.Cmd {
	p.mode = modeName
	p.name = components.NewTextInput("Child's first name", false, 40)
	p.year = components.NewTextInput("Birth year (optional)", true, 4)
	p.year.Blur()
	return p.name.Init()
}

func (p *PickerScreen) choose(c *store.Child) tea.Cmd {
	p.env.Child = c
	if p.next == nil {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	nextScreen := p.next()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: nextScreen} }
}

func (p *PickerScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch p.mode {
	case modeList:
		if !p.loaded || p.errMsg != "" {
			return p, nil
		}
		var cmd tea.Cmd
		p.menu, cmd = p.menu.Update(msg)
		return p, cmd

	case modeName:
		switch key {
		case "esc":
			p.mode = modeList
			return p, nil
		case "enter":
			if err := validateName(p.name.Value(), p.children); err != "" {
				p.name.Err = err
				return p, nil
			}
			p.mode = modeYear
			p.name.Blur()
			return p, p.year.Focus()
		}
		var cmd tea.Cmd
		p.name, cmd = p.name.Update(msg)
		return p, cmd

	case modeYear:
		switch key {
		case "esc":
			p.mode = modeName
			p.year.Blur()
			return p, p.name.Focus()
		case "enter":
			year := 0
			if p.year.Value() != "" {
				y, err := p.year.NumericValue()
				if err != nil || y < 1900 || y > p.env.Clock().Year() {
					p.year.Err = fmt.Sprintf("enter a year between 1900 and %d", p.env.Clock().Year())
					return p, nil
				}
				year = y
			}
			return p, p.create(p.name.Value(), year)
		}
		var cmd tea.Cmd
		p.year, cmd = p.year.Update(msg)
		return p, cmd
	}

	return p, nil
}

func (p *PickerScreen) create(name string, year int) tea.Cmd {
	repo := p.env.Children
	now := p.env.Clock()
	return func() tea.Msg {
		c := &store.Child{Name: name, BirthYear: year, CreatedAt: now.UTC()}
		if repo == nil {
			return childCreatedMsg{Err: fmt.Errorf("no database is open")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.Create(ctx, c); err != nil {
			return childCreatedMsg{Err: err}
		}
		return childCreatedMsg{Child: c}
	}
}

// validateName returns a user-facing problem with name, or "".
func validateName(name string, existing []store.Child) string {
	if name == "" {
		return "a name is required"
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, name) {
			return fmt.Sprintf("%s is already added", c.Name)
		}
	}
	return ""
}

func (p *PickerScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)

	if p.errMsg != "" {
		return layout.Center(theme.Incorrect.Render("Error: "+p.errMsg), width, height)
	}
	if !p.loaded {
		return layout.Center(theme.Hint.Render("Loading..."), width, height)
	}

	var b strings.Builder
	switch p.mode {
	case modeList:
		b.WriteString(theme.Title.Render("Who is playing today?"))
		b.WriteString("\n\n")
		if len(p.children) == 0 {
			b.WriteString(theme.Hint.Render("No children yet. Add one to begin."))
			b.WriteString("\n\n")
		}
		b.WriteString(p.menu.View())
	case modeName, modeYear:
		b.WriteString(theme.Title.Render("Add a child"))
		b.WriteString("\n\n")
		b.WriteString(labelStyle(p.mode == modeName).Render("Name"))
		b.WriteString("\n")
		b.WriteString(p.name.View())
		b.WriteString("\n\n")
		b.WriteString(labelStyle(p.mode == modeYear).Render("Birth year"))
		b.WriteString("\n")
		b.WriteString(p.year.View())
	}

	return layout.Center(components.Panel(b.String(), cw), width, height)
}

func labelStyle(active bool) lipgloss.Style {
	if active {
		return theme.Selected
	}
	return lipgloss.NewStyle().Foreground(theme.TextDim)
}
