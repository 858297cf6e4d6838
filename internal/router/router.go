// Package router keeps the stack of open screens. Screens navigate by
// returning the message types below as commands.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/autismart/autismart/internal/screen"
)

type PushScreenMsg struct {
	Screen screen.Screen
}

type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the top screen, so back skips the old one.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

type PopToRootMsg struct{}

// Router never lets the stack drop below its root screen.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int { return len(r.stack) }

func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

func (r *Router) Pop() tea.Cmd {
	if len(r.stack) < 2 {
		return nil
	}
	r.dropTop()
	return r.resume()
}

func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if len(r.stack) > 0 {
		r.dropTop()
	}
	return r.Push(s)
}

// PopToRoot closes everything above the root and resumes it once.
func (r *Router) PopToRoot() tea.Cmd {
	if len(r.stack) < 2 {
		return nil
	}
	for len(r.stack) > 1 {
		r.dropTop()
	}
	return r.resume()
}

// CloseAll closes every screen, top first, leaving the stack intact.
func (r *Router) CloseAll() {
	for i := len(r.stack) - 1; i >= 0; i-- {
		closeScreen(r.stack[i])
	}
}

func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case PopToRootMsg:
		return r.PopToRoot()
	}

	top := r.Active()
	if top == nil {
		return nil
	}
	next, cmd := top.Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	if top := r.Active(); top != nil {
		return top.View(width, height)
	}
	return ""
}

func (r *Router) dropTop() {
	last := len(r.stack) - 1
	closeScreen(r.stack[last])
	r.stack[last] = nil
	r.stack = r.stack[:last]
}

func (r *Router) resume() tea.Cmd {
	if rs, ok := r.Active().(screen.Resumer); ok {
		return rs.Resume()
	}
	return nil
}

func closeScreen(s screen.Screen) {
	if c, ok := s.(screen.Closer); ok {
		c.Close()
	}
}
