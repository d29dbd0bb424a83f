package house

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrInvalidTool is returned when Empty (or an unknown type) is chosen as the active tool.
	ErrInvalidTool = errors.New("invalid tool")
	// ErrInvalidColor is returned for colors that are not #RRGGBB.
	ErrInvalidColor = errors.New("invalid color")
)

// Palette is the color picker of the tool panel.
var Palette = []NamedColor{
	{"Wood", "#8B4513"},
	{"White", "#FFFFFF"},
	{"Gray", "#808080"},
	{"Blue", "#4169E1"},
	{"Red", "#DC143C"},
	{"Green", "#228B22"},
	{"Yellow", "#FFD700"},
	{"Purple", "#9370DB"},
	{"Black", "#2C2C2C"},
}

type NamedColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Selection is the active tool state.
type Selection struct {
	Tool      TileType
	Room      RoomType
	Furniture FurnitureType
	Color     string
}

func DefaultSelection() Selection {
	return Selection{Tool: TileWall, Room: RoomLivingRoom, Furniture: FurnitureSofa, Color: woodColor}
}

// Tile builds the tile the selection would place.
func (s Selection) Tile() Tile {
	switch s.Tool {
	case TileFurniture:
		return FurnitureTile(s.Furniture, s.Color)
	case TileFloor:
		return FloorTile(s.Room, s.Color)
	default:
		return StructureTile(s.Tool, s.Color)
	}
}

// Label is the "Current Selection" caption.
func (s Selection) Label() string {
	switch s.Tool {
	case TileFurniture:
		return "Furniture: " + titleCase(s.Furniture.String())
	case TileFloor:
		return "Room: " + s.Room.String()
	default:
		return "Tool: " + titleCase(s.Tool.String())
	}
}

const DefaultDesignName = "My House"

// Editor is one user's grid editor session. All methods are safe for
// concurrent use; each request locks the whole editor.
type Editor struct {
	mu      sync.Mutex
	grid    *Grid
	sel     Selection
	name    string
	history SnapshotStore
	rng     *rand.Rand
	logger  *zap.Logger
}

func NewEditor(history SnapshotStore, rng *rand.Rand, logger *zap.Logger) *Editor {
	if history == nil {
		history = NewMemorySnapshotStore()
	}
	return &Editor{
		grid:    NewGrid(),
		sel:     DefaultSelection(),
		name:    DefaultDesignName,
		history: history,
		rng:     rng,
		logger:  logger,
	}
}

func (e *Editor) SelectTool(t TileType) error {
	if t == TileEmpty || !t.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidTool, t)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.Tool = t
	return nil
}

func (e *Editor) SelectRoom(r RoomType) error {
	if !r.Valid() {
		return fmt.Errorf("room %s: %w", r, ErrUnknownTag)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.Room = r
	return nil
}

// SelectFurniture also switches the active tool to furniture.
func (e *Editor) SelectFurniture(f FurnitureType) error {
	if !f.Valid() {
		return fmt.Errorf("furniture %s: %w", f, ErrUnknownTag)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.Furniture = f
	e.sel.Tool = TileFurniture
	return nil
}

func (e *Editor) SelectColor(hex string) error {
	if !hexColor.MatchString(hex) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.Color = hex
	return nil
}

func (e *Editor) Selection() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel
}

// Place writes the tile built from the active selection into (x,y).
func (e *Editor) Place(x, y int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Set(x, y, e.sel.Tile())
}

// Remove resets (x,y) to an empty tile.
func (e *Editor) Remove(x, y int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Set(x, y, EmptyTile())
}

func (e *Editor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grid.Reset()
}

func (e *Editor) ApplyTemplate(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ApplyTemplate(e.grid, name)
}

func (e *Editor) Randomize() {
	e.mu.Lock()
	defer e.mu.Unlock()
	Randomize(e.grid, e.rng)
}

func (e *Editor) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Stats()
}

func (e *Editor) SetName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.name = name
}

func (e *Editor) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.name
}

// Grid returns a copy of the current grid.
func (e *Editor) Grid() Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.grid
}

// Save appends a snapshot of the grid to the history.
func (e *Editor) Save(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	snap := EncodeSnapshot(e.name, e.grid)
	e.mu.Unlock()

	if err := e.history.Append(ctx, snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to save design: %w", err)
	}
	e.logger.Debug("house design saved", zap.String("name", snap.Name))
	return snap, nil
}

// Load restores the grid from the most recent snapshot. On a decode failure
// the grid is left untouched.
func (e *Editor) Load(ctx context.Context) (string, error) {
	snap, err := e.history.Latest(ctx)
	if err != nil {
		return "", err
	}
	g, err := DecodeSnapshot(snap)
	if err != nil {
		e.logger.Warn("saved design rejected", zap.String("name", snap.Name), zap.Error(err))
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	*e.grid = *g
	e.name = snap.Name
	return snap.Name, nil
}

func (e *Editor) SavedCount(ctx context.Context) (int, error) {
	return e.history.Len(ctx)
}

// Close satisfies the session state contract. The editor owns no timers.
func (e *Editor) Close() error { return nil }
