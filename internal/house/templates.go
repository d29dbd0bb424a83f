package house

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrUnknownTemplate is returned by ApplyTemplate for names not in Templates().
var ErrUnknownTemplate = errors.New("unknown template")

const (
	woodColor   = "#8B4513"
	doorColor   = "#654321"
	windowColor = "#87CEEB"
	floorColor  = "#DEB887"
)

var templates = map[string]func(g *Grid){
	"small":     smallHouse,
	"mansion":   mansion,
	"apartment": apartment,
}

// Templates lists the quick-template names in display order.
func Templates() []string {
	return []string{"small", "mansion", "apartment"}
}

// ApplyTemplate clears g and draws the named layout.
func ApplyTemplate(g *Grid, name string) error {
	build, ok := templates[name]
	if !ok {
		return fmt.Errorf("template %q: %w", name, ErrUnknownTemplate)
	}
	g.Reset()
	build(g)
	return nil
}

func smallHouse(g *Grid) {
	g.box(7, 12, woodColor)
	g[7][10] = StructureTile(TileDoor, doorColor)
	g[9][7] = StructureTile(TileWindow, windowColor)
	g.fill(8, 12, 8, 12, FloorTile(RoomLivingRoom, floorColor))
	g[9][9] = FurnitureTile(FurnitureSofa, "#4682B4")
	g[10][10] = FurnitureTile(FurnitureTV, "#2F4F4F")
}

func mansion(g *Grid) {
	g.box(3, 16, woodColor)
	g[3][10] = StructureTile(TileDoor, doorColor)
	for _, p := range [][2]int{{8, 3}, {8, 16}, {12, 3}, {12, 16}} {
		g[p[0]][p[1]] = StructureTile(TileWindow, windowColor)
	}
	g.fill(4, 10, 4, 10, FloorTile(RoomLivingRoom, floorColor))
	g.fill(4, 10, 10, 16, FloorTile(RoomKitchen, "#F0E68C"))
	g.fill(10, 16, 4, 10, FloorTile(RoomBedroom, "#E6E6FA"))
	g.fill(10, 16, 10, 16, FloorTile(RoomBathroom, "#B0E0E6"))
}

func apartment(g *Grid) {
	g.box(5, 14, "#696969")
	g[5][10] = StructureTile(TileDoor, "#4A4A4A")
	g[9][5] = StructureTile(TileWindow, windowColor)
	g[10][14] = StructureTile(TileWindow, windowColor)
	g.fill(6, 10, 6, 14, FloorTile(RoomLivingRoom, "#D3D3D3"))
	g.fill(10, 14, 6, 14, FloorTile(RoomBedroom, "#DDA0DD"))
	g[7][8] = FurnitureTile(FurnitureSofa, "#708090")
	g[11][11] = FurnitureTile(FurnitureBed, "#8B7355")
}

// Randomize clears g and generates a random house: a fixed shell, floors on
// roughly 70% of the interior with uniform room types, then ten uniformly
// placed furniture pieces.
func Randomize(g *Grid, rng *rand.Rand) {
	g.Reset()
	g.box(5, 14, woodColor)
	g[5][10] = StructureTile(TileDoor, doorColor)
	g[10][5] = StructureTile(TileWindow, windowColor)
	g[10][14] = StructureTile(TileWindow, windowColor)

	rooms := RoomTypes()
	for x := 6; x < 14; x++ {
		for y := 6; y < 14; y++ {
			if rng.Float64() > 0.3 {
				g[x][y] = FloorTile(rooms[rng.Intn(len(rooms))], floorColor)
			}
		}
	}

	kinds := FurnitureTypes()
	for i := 0; i < 10; i++ {
		x := 6 + rng.Intn(8)
		y := 6 + rng.Intn(8)
		g[x][y] = FurnitureTile(kinds[rng.Intn(len(kinds))], woodColor)
	}
}
