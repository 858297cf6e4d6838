package play

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/games"
	"github.com/autismart/autismart/internal/games/colormatch"
	"github.com/autismart/autismart/internal/games/emotion"
	"github.com/autismart/autismart/internal/games/soundmatch"
	"github.com/autismart/autismart/internal/ui/components"
	"github.com/autismart/autismart/internal/ui/theme"
)

type colorBoard struct {
	*colormatch.Game
}

func (b *colorBoard) Kind() games.Kind { return games.KindColorMatch }
func (b *colorBoard) Cells() int       { return len(b.Current().Swatches) }
func (b *colorBoard) Columns() int     { return b.Cells() }

func (b *colorBoard) Choose(i int) (outcome, error) {
	fb, err := b.Answer(i)
	if err != nil {
		return outcome{}, err
	}
	return outcome{
		Correct:       fb.Correct,
		Points:        fb.Points,
		LevelComplete: fb.LevelComplete,
		Bonus:         fb.Bonus.Total(),
	}, nil
}

func (b *colorBoard) Progress() string {
	return fmt.Sprintf("Round %d of %d", min(b.Round()+1, b.Rounds()), b.Rounds())
}

func (b *colorBoard) Render(cursor, width int) string {
	r := b.Current()
	var sb strings.Builder
	sb.WriteString(theme.Body.Render("Find this color:"))
	sb.WriteString("\n\n")
	sb.WriteString(components.Swatch(r.Target.Hex, 12))
	sb.WriteString("\n")
	sb.WriteString(components.Swatch(r.Target.Hex, 12))
	sb.WriteString("\n\n")

	cells := make([]string, len(r.Swatches))
	for i, c := range r.Swatches {
		block := components.Swatch(c.Hex, 8) + "\n" + components.Swatch(c.Hex, 8)
		label := fmt.Sprintf("%d", i+1)
		if i == cursor {
			label = "▸" + label
		}
		cells[i] = lipgloss.JoinVertical(lipgloss.Center, block, choiceLabel(label, i == cursor))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, spaced(cells)...))
	return sb.String()
}

type soundBoard struct {
	*soundmatch.Game
}

func (b *soundBoard) Kind() games.Kind { return games.KindSoundMatch }
func (b *soundBoard) Cells() int       { return len(b.Current().Options) }
func (b *soundBoard) Columns() int     { return 1 }

func (b *soundBoard) Choose(i int) (outcome, error) {
	fb, err := b.Answer(i)
	if err != nil {
		return outcome{}, err
	}
	return outcome{
		Correct:       fb.Correct,
		Points:        fb.Points,
		LevelComplete: fb.LevelComplete,
		Bonus:         fb.Bonus.Total(),
	}, nil
}

func (b *soundBoard) Progress() string {
	return fmt.Sprintf("Round %d of %d", min(b.Round()+1, b.Rounds()), b.Rounds())
}

func (b *soundBoard) Render(cursor, width int) string {
	r := b.Current()
	opts := make([]string, len(r.Options))
	for i, o := range r.Options {
		opts[i] = o.Source
	}
	prompt := theme.Body.Render("Who makes this sound?") + "\n\n" +
		lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("🔊  "+r.Sound.Cue)
	return prompt + "\n\n" + renderList(opts, cursor)
}

type emotionBoard struct {
	*emotion.Game
}

func (b *emotionBoard) Kind() games.Kind { return games.KindEmotion }
func (b *emotionBoard) Cells() int       { return len(b.Current().Options) }
func (b *emotionBoard) Columns() int     { return 1 }

func (b *emotionBoard) Choose(i int) (outcome, error) {
	fb, err := b.Answer(i)
	if err != nil {
		return outcome{}, err
	}
	return outcome{
		Correct:       fb.Correct,
		Points:        fb.Points,
		LevelComplete: fb.LevelComplete,
		Bonus:         fb.Bonus.Total(),
	}, nil
}

func (b *emotionBoard) Progress() string {
	return fmt.Sprintf("Round %d of %d", min(b.Round()+1, b.Rounds()), b.Rounds())
}

func (b *emotionBoard) Render(cursor, width int) string {
	r := b.Current()
	prompt := theme.Body.Render("How does this face feel?") + "\n\n" +
		lipgloss.NewStyle().Bold(true).Render(r.Emotion.Face) + "  " +
		theme.Hint.Render(r.Scene)
	return prompt + "\n\n" + renderList(r.Options, cursor)
}

func renderList(options []string, cursor int) string {
	var sb strings.Builder
	for i, o := range options {
		prefix := "  "
		if i == cursor {
			prefix = "▸ "
		}
		sb.WriteString(choiceLabel(fmt.Sprintf("%s%d)  %s", prefix, i+1, o), i == cursor))
		sb.WriteString("\n")
	}
	return sb.String()
}

func choiceLabel(s string, selected bool) string {
	if selected {
		return theme.Selected.Render(s)
	}
	return theme.Unselected.Render(s)
}

// spaced puts a two-column gap between horizontally joined cells.
func spaced(cells []string) []string {
	out := make([]string, 0, len(cells)*2)
	for i, c := range cells {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, c)
	}
	return out
}
