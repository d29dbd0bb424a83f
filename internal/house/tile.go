// Package house implements the house-maker grid editor: a fixed 20x20 matrix of
// tagged tiles, the tools that write into it, and the snapshot history.
package house

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTag is returned when a wire tag does not name a known enum value.
	ErrUnknownTag = errors.New("unknown enum tag")
	// ErrInvalidTile is returned for tiles whose sub-type does not match the structural type.
	ErrInvalidTile = errors.New("invalid tile")
)

// TileType is the structural type of one grid cell.
type TileType int

const (
	TileEmpty TileType = iota
	TileWall
	TileDoor
	TileWindow
	TileFloor
	TileRoof
	TileFurniture
)

var tileTags = [...]string{"empty", "wall", "door", "window", "floor", "roof", "furniture"}

var tileSymbols = [...]string{"⬜", "🧱", "🚪", "🪟", "🟫", "🔺", "🪑"}

// TileTypes lists the placeable tile types in tool-panel order (Empty excluded).
func TileTypes() []TileType {
	return []TileType{TileWall, TileDoor, TileWindow, TileFloor, TileRoof, TileFurniture}
}

func (t TileType) Valid() bool { return t >= TileEmpty && t <= TileFurniture }

func (t TileType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TileType(%d)", int(t))
	}
	return tileTags[t]
}

// Symbol is the glyph drawn for the tile type.
func (t TileType) Symbol() string {
	if !t.Valid() {
		return tileSymbols[TileEmpty]
	}
	return tileSymbols[t]
}

// ParseTileType maps a wire tag back to a TileType.
func ParseTileType(s string) (TileType, error) {
	for i, tag := range tileTags {
		if tag == s {
			return TileType(i), nil
		}
	}
	return TileEmpty, fmt.Errorf("tile type %q: %w", s, ErrUnknownTag)
}

// RoomType is the room a floor tile belongs to. RoomNone means "no room".
type RoomType int

const (
	RoomNone RoomType = iota
	RoomLivingRoom
	RoomBedroom
	RoomKitchen
	RoomBathroom
	RoomGarage
)

var roomTags = [...]string{"", "Living Room", "Bedroom", "Kitchen", "Bathroom", "Garage"}

var roomSymbols = [...]string{"🏠", "🛋️", "🛏️", "🍳", "🚿", "🚗"}

// RoomTypes lists every real room type.
func RoomTypes() []RoomType {
	return []RoomType{RoomLivingRoom, RoomBedroom, RoomKitchen, RoomBathroom, RoomGarage}
}

func (r RoomType) Valid() bool { return r > RoomNone && r <= RoomGarage }

func (r RoomType) String() string {
	if r == RoomNone {
		return "none"
	}
	if !r.Valid() {
		return fmt.Sprintf("RoomType(%d)", int(r))
	}
	return roomTags[r]
}

func (r RoomType) Symbol() string {
	if !r.Valid() {
		return roomSymbols[RoomNone]
	}
	return roomSymbols[r]
}

func ParseRoomType(s string) (RoomType, error) {
	for i, tag := range roomTags {
		if i > 0 && tag == s {
			return RoomType(i), nil
		}
	}
	return RoomNone, fmt.Errorf("room type %q: %w", s, ErrUnknownTag)
}

// FurnitureType is the kind of furniture on a furniture tile. FurnitureNone means "no furniture".
type FurnitureType int

const (
	FurnitureNone FurnitureType = iota
	FurnitureSofa
	FurnitureBed
	FurnitureTable
	FurnitureChair
	FurnitureTV
	FurnitureFridge
	FurnitureToilet
	FurnitureSink
)

var furnitureTags = [...]string{"", "sofa", "bed", "table", "chair", "tv", "fridge", "toilet", "sink"}

var furnitureSymbols = [...]string{"📦", "🛋️", "🛏️", "🪑", "💺", "📺", "🧊", "🚽", "🚰"}

func FurnitureTypes() []FurnitureType {
	return []FurnitureType{
		FurnitureSofa, FurnitureBed, FurnitureTable, FurnitureChair,
		FurnitureTV, FurnitureFridge, FurnitureToilet, FurnitureSink,
	}
}

func (f FurnitureType) Valid() bool { return f > FurnitureNone && f <= FurnitureSink }

func (f FurnitureType) String() string {
	if f == FurnitureNone {
		return "none"
	}
	if !f.Valid() {
		return fmt.Sprintf("FurnitureType(%d)", int(f))
	}
	return furnitureTags[f]
}

func (f FurnitureType) Symbol() string {
	if !f.Valid() {
		return furnitureSymbols[FurnitureNone]
	}
	return furnitureSymbols[f]
}

func ParseFurnitureType(s string) (FurnitureType, error) {
	for i, tag := range furnitureTags {
		if i > 0 && tag == s {
			return FurnitureType(i), nil
		}
	}
	return FurnitureNone, fmt.Errorf("furniture type %q: %w", s, ErrUnknownTag)
}

// DefaultTileColor is the color carried by empty tiles.
const DefaultTileColor = "#E0E0E0"

// Tile is one cell of the grid. Room is set only on floor tiles and Furniture
// only on furniture tiles; the constructors below keep that true.
type Tile struct {
	Type      TileType
	Room      RoomType
	Furniture FurnitureType
	Color     string
	Rotation  int
}

// EmptyTile returns the tile every cell starts with.
func EmptyTile() Tile {
	return Tile{Type: TileEmpty, Color: DefaultTileColor}
}

// StructureTile builds a tile without sub-type (wall, door, window, roof).
func StructureTile(t TileType, color string) Tile {
	return Tile{Type: t, Color: color}
}

func FloorTile(room RoomType, color string) Tile {
	return Tile{Type: TileFloor, Room: room, Color: color}
}

func FurnitureTile(kind FurnitureType, color string) Tile {
	return Tile{Type: TileFurniture, Furniture: kind, Color: color}
}

// Validate checks the tile against the sub-type rules.
func (t Tile) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: type %d", ErrInvalidTile, int(t.Type))
	}
	if t.Room != RoomNone && (t.Type != TileFloor || !t.Room.Valid()) {
		return fmt.Errorf("%w: room %s on %s tile", ErrInvalidTile, t.Room, t.Type)
	}
	if t.Furniture != FurnitureNone && (t.Type != TileFurniture || !t.Furniture.Valid()) {
		return fmt.Errorf("%w: furniture %s on %s tile", ErrInvalidTile, t.Furniture, t.Type)
	}
	return nil
}

// Symbol is the glyph shown on the rendered cell.
func (t Tile) Symbol() string {
	switch t.Type {
	case TileEmpty:
		return ""
	case TileFurniture:
		return t.Furniture.Symbol()
	case TileFloor:
		if t.Room == RoomNone {
			return ""
		}
		return t.Room.Symbol()
	default:
		return t.Type.Symbol()
	}
}
