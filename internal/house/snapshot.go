package house

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoSnapshot is returned by Load when nothing has been saved yet.
	ErrNoSnapshot = errors.New("no saved designs")
	// ErrBadShape is returned when a snapshot grid is not Size×Size.
	ErrBadShape = errors.New("snapshot grid has wrong dimensions")
)

// TileRecord is the plain field record a tile is serialized to.
type TileRecord struct {
	Type          string  `json:"type"`
	RoomType      *string `json:"room_type"`
	FurnitureType *string `json:"furniture_type"`
	Color         string  `json:"color"`
	Rotation      int     `json:"rotation,omitempty"`
}

// Snapshot is a serialized copy of the grid captured at save time.
type Snapshot struct {
	Name string         `json:"name"`
	Grid [][]TileRecord `json:"grid"`
}

func strPtr(s string) *string { return &s }

// EncodeSnapshot serializes g into a nested list of records.
func EncodeSnapshot(name string, g *Grid) Snapshot {
	rows := make([][]TileRecord, Size)
	for x := range g {
		row := make([]TileRecord, Size)
		for y := range g[x] {
			t := g[x][y]
			rec := TileRecord{Type: t.Type.String(), Color: t.Color, Rotation: t.Rotation}
			if t.Room != RoomNone {
				rec.RoomType = strPtr(t.Room.String())
			}
			if t.Furniture != FurnitureNone {
				rec.FurnitureType = strPtr(t.Furniture.String())
			}
			row[y] = rec
		}
		rows[x] = row
	}
	return Snapshot{Name: name, Grid: rows}
}

// DecodeSnapshot rebuilds a grid. Unknown tags fail closed with ErrUnknownTag;
// nothing is defaulted.
func DecodeSnapshot(s Snapshot) (*Grid, error) {
	if len(s.Grid) != Size {
		return nil, fmt.Errorf("%w: %d rows", ErrBadShape, len(s.Grid))
	}
	g := &Grid{}
	for x, row := range s.Grid {
		if len(row) != Size {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrBadShape, x, len(row))
		}
		for y, rec := range row {
			t, err := decodeTile(rec)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", x, y, err)
			}
			g[x][y] = t
		}
	}
	return g, nil
}

func decodeTile(rec TileRecord) (Tile, error) {
	tt, err := ParseTileType(rec.Type)
	if err != nil {
		return Tile{}, err
	}
	t := Tile{Type: tt, Color: rec.Color, Rotation: rec.Rotation}
	if rec.RoomType != nil {
		if t.Room, err = ParseRoomType(*rec.RoomType); err != nil {
			return Tile{}, err
		}
	}
	if rec.FurnitureType != nil {
		if t.Furniture, err = ParseFurnitureType(*rec.FurnitureType); err != nil {
			return Tile{}, err
		}
	}
	if err := t.Validate(); err != nil {
		return Tile{}, err
	}
	return t, nil
}

// MarshalSnapshot / UnmarshalSnapshot are the byte form used by the stores.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

func UnmarshalSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// SnapshotStore is the save history. Latest returns ErrNoSnapshot when empty.
type SnapshotStore interface {
	Append(ctx context.Context, s Snapshot) error
	Latest(ctx context.Context) (Snapshot, error)
	Len(ctx context.Context) (int, error)
}

// MemorySnapshotStore keeps the history for the lifetime of the process.
type MemorySnapshotStore struct {
	mu    sync.Mutex
	items []Snapshot
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

var _ SnapshotStore = (*MemorySnapshotStore)(nil)

func (m *MemorySnapshotStore) Append(_ context.Context, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, s)
	return nil
}

func (m *MemorySnapshotStore) Latest(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return Snapshot{}, ErrNoSnapshot
	}
	return m.items[len(m.items)-1], nil
}

func (m *MemorySnapshotStore) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}
