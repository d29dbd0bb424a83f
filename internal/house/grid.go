package house

import (
	"errors"
	"fmt"
	"sort"
)

// Size is the edge length of the grid. It never changes at runtime.
const Size = 20

// ErrOutOfBounds is returned for coordinates outside 0..Size-1.
var ErrOutOfBounds = errors.New("coordinates out of bounds")

// Grid is the N×N tile matrix, indexed [x][y] with x as the row.
type Grid [Size][Size]Tile

// NewGrid returns a grid where every cell holds an empty tile.
func NewGrid() *Grid {
	g := &Grid{}
	g.Reset()
	return g
}

// Reset overwrites every cell with an empty tile.
func (g *Grid) Reset() {
	for x := range g {
		for y := range g[x] {
			g[x][y] = EmptyTile()
		}
	}
}

func inBounds(x, y int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size
}

func (g *Grid) At(x, y int) (Tile, error) {
	if !inBounds(x, y) {
		return Tile{}, fmt.Errorf("(%d,%d): %w", x, y, ErrOutOfBounds)
	}
	return g[x][y], nil
}

// Set overwrites a single cell in place.
func (g *Grid) Set(x, y int, t Tile) error {
	if !inBounds(x, y) {
		return fmt.Errorf("(%d,%d): %w", x, y, ErrOutOfBounds)
	}
	if err := t.Validate(); err != nil {
		return err
	}
	g[x][y] = t
	return nil
}

// Count returns the number of cells holding the given tile type.
func (g *Grid) Count(t TileType) int {
	n := 0
	for x := range g {
		for y := range g[x] {
			if g[x][y].Type == t {
				n++
			}
		}
	}
	return n
}

// Stats are the house counters shown next to the grid.
type Stats struct {
	Walls     int        `json:"walls"`
	Doors     int        `json:"doors"`
	Windows   int        `json:"windows"`
	Furniture int        `json:"furniture"`
	Rooms     int        `json:"rooms"`
	RoomTypes []RoomType `json:"-"`
}

// Stats tallies the whole grid in one pass. It is recomputed on every call.
func (g *Grid) Stats() Stats {
	var s Stats
	seen := make(map[RoomType]struct{})
	for x := range g {
		for y := range g[x] {
			t := g[x][y]
			switch t.Type {
			case TileWall:
				s.Walls++
			case TileDoor:
				s.Doors++
			case TileWindow:
				s.Windows++
			case TileFurniture:
				s.Furniture++
			case TileFloor:
				if t.Room != RoomNone {
					seen[t.Room] = struct{}{}
				}
			}
		}
	}
	s.RoomTypes = make([]RoomType, 0, len(seen))
	for r := range seen {
		s.RoomTypes = append(s.RoomTypes, r)
	}
	sort.Slice(s.RoomTypes, func(i, j int) bool { return s.RoomTypes[i] < s.RoomTypes[j] })
	s.Rooms = len(s.RoomTypes)
	return s
}

// fill writes t into rows [x0,x1) and columns [y0,y1).
func (g *Grid) fill(x0, x1, y0, y1 int, t Tile) {
	for x := x0; x < x1; x++ {
		for y := y0; y < y1; y++ {
			g[x][y] = t
		}
	}
}

// box draws a square wall outline with corners at (lo,lo) and (hi,hi).
func (g *Grid) box(lo, hi int, color string) {
	wall := StructureTile(TileWall, color)
	for i := lo; i <= hi; i++ {
		g[lo][i] = wall
		g[hi][i] = wall
		g[i][lo] = wall
		g[i][hi] = wall
	}
}
