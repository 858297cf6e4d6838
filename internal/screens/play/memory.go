package play

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/games"
	"github.com/autismart/autismart/internal/games/memorymatch"
	"github.com/autismart/autismart/internal/ui/theme"
)

const memoryColumns = 4

type memoryBoard struct {
	*memorymatch.Game
}

func (b *memoryBoard) Kind() games.Kind { return games.KindMemoryMatch }
func (b *memoryBoard) Cells() int       { return len(b.Cards()) }
func (b *memoryBoard) Columns() int     { return memoryColumns }

func (b *memoryBoard) Choose(i int) (outcome, error) {
	fb, err := b.Flip(i)
	if err != nil {
		return outcome{}, err
	}
	return outcome{
		Correct:       fb.Result == memorymatch.FlipMatch,
		Neutral:       fb.Result == memorymatch.FlipFirst,
		Points:        fb.Points,
		LevelComplete: fb.LevelComplete,
		Bonus:         fb.Bonus.Total(),
		Settle:        fb.Result == memorymatch.FlipMismatch,
	}, nil
}

func (b *memoryBoard) Progress() string {
	return fmt.Sprintf("Pairs %d of %d  ·  Moves %d", b.Matched(), b.Pairs(), b.Moves())
}

func (b *memoryBoard) Render(cursor, width int) string {
	cards := b.Cards()
	var rows []string
	for start := 0; start < len(cards); start += memoryColumns {
		end := min(start+memoryColumns, len(cards))
		var cells []string
		for i := start; i < end; i++ {
			cells = append(cells, renderCard(cards[i], i == cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, spaced(cells)...))
	}
	return theme.Body.Render("Find the matching pairs:") + "\n\n" + strings.Join(rows, "\n")
}

func renderCard(c memorymatch.Card, selected bool) string {
	face := "?"
	fg := theme.TextDim
	switch {
	case c.Matched:
		face = c.Face
		fg = theme.Success
	case c.FaceUp:
		face = c.Face
		fg = theme.Text
	}
	border := theme.Border
	if selected {
		border = theme.Primary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(fg).
		Width(6).
		Align(lipgloss.Center).
		Render(face)
}
