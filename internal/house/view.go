package house

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// CellView is one rendered grid cell.
type CellView struct {
	Symbol     string `json:"symbol"`
	Background string `json:"background"`
}

// View is everything the page draws. It is rebuilt from state on every request.
type View struct {
	Name      string       `json:"name"`
	Cells     [][]CellView `json:"cells"`
	Stats     Stats        `json:"stats"`
	RoomNames []string     `json:"room_names"`
	Selection string       `json:"selection"`
	Color     string       `json:"color"`
	Palette   []NamedColor `json:"palette"`
	Templates []string     `json:"templates"`
	Saved     int          `json:"saved"`
}

const emptyBackground = "#F5F5F5"

// RenderGrid maps tiles to symbols and colors.
func RenderGrid(g *Grid) [][]CellView {
	cells := make([][]CellView, Size)
	for x := range g {
		row := make([]CellView, Size)
		for y := range g[x] {
			t := g[x][y]
			bg := t.Color
			if t.Type == TileEmpty {
				bg = emptyBackground
			}
			row[y] = CellView{Symbol: t.Symbol(), Background: bg}
		}
		cells[x] = row
	}
	return cells
}

// Render builds the view of the editor. A history read failure only zeroes
// the saved counter.
func (e *Editor) Render(ctx context.Context) View {
	saved, err := e.history.Len(ctx)
	if err != nil {
		e.logger.Warn("failed to count saved designs", zap.Error(err))
		saved = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	stats := e.grid.Stats()
	names := make([]string, 0, len(stats.RoomTypes))
	for _, r := range stats.RoomTypes {
		names = append(names, r.String())
	}
	return View{
		Name:      e.name,
		Cells:     RenderGrid(e.grid),
		Stats:     stats,
		RoomNames: names,
		Selection: e.sel.Label(),
		Color:     e.sel.Color,
		Palette:   Palette,
		Templates: Templates(),
		Saved:     saved,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
