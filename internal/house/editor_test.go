package house

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEditor(seed int64) *Editor {
	return NewEditor(NewMemorySnapshotStore(), rand.New(rand.NewSource(seed)), zap.NewNop())
}

func TestEditor_PlaceUsesSelection(t *testing.T) {
	e := newTestEditor(1)

	require.NoError(t, e.SelectTool(TileFloor))
	require.NoError(t, e.SelectRoom(RoomKitchen))
	require.NoError(t, e.SelectColor("#FFD700"))
	require.NoError(t, e.Place(3, 4))

	g := e.Grid()
	assert.Equal(t, FloorTile(RoomKitchen, "#FFD700"), g[3][4])

	require.NoError(t, e.SelectFurniture(FurnitureTV))
	assert.Equal(t, TileFurniture, e.Selection().Tool)
	require.NoError(t, e.Place(0, 19))

	g = e.Grid()
	assert.Equal(t, FurnitureTile(FurnitureTV, "#FFD700"), g[0][19])
	assert.Equal(t, "Furniture: Tv", e.Selection().Label())
}

func TestEditor_RejectsBadInput(t *testing.T) {
	e := newTestEditor(1)

	assert.ErrorIs(t, e.Place(Size, 0), ErrOutOfBounds)
	assert.ErrorIs(t, e.Remove(-1, 3), ErrOutOfBounds)
	assert.ErrorIs(t, e.SelectTool(TileEmpty), ErrInvalidTool)
	assert.ErrorIs(t, e.SelectColor("red"), ErrInvalidColor)
	assert.ErrorIs(t, e.SelectRoom(RoomNone), ErrUnknownTag)
	assert.ErrorIs(t, e.ApplyTemplate("castle"), ErrUnknownTemplate)
}

func TestEditor_FurnitureStatMatchesCells(t *testing.T) {
	e := newTestEditor(7)
	rng := rand.New(rand.NewSource(42))
	tools := TileTypes()

	for i := 0; i < 2000; i++ {
		x, y := rng.Intn(Size), rng.Intn(Size)
		switch rng.Intn(3) {
		case 0:
			require.NoError(t, e.Remove(x, y))
		case 1:
			require.NoError(t, e.SelectFurniture(FurnitureTypes()[rng.Intn(8)]))
			require.NoError(t, e.Place(x, y))
		default:
			require.NoError(t, e.SelectTool(tools[rng.Intn(len(tools))]))
			require.NoError(t, e.Place(x, y))
		}

		g := e.Grid()
		s := e.Stats()
		require.Equal(t, g.Count(TileFurniture), s.Furniture)
		require.Equal(t, g.Count(TileWall), s.Walls)
		require.Equal(t, g.Count(TileDoor), s.Doors)
		require.Equal(t, g.Count(TileWindow), s.Windows)
	}
}

func TestEditor_RemovedCellNeverCounted(t *testing.T) {
	e := newTestEditor(1)

	require.NoError(t, e.SelectFurniture(FurnitureBed))
	require.NoError(t, e.Place(2, 2))
	require.NoError(t, e.SelectTool(TileFloor))
	require.NoError(t, e.SelectRoom(RoomGarage))
	require.NoError(t, e.Place(5, 5))
	require.Equal(t, 1, e.Stats().Furniture)
	require.Equal(t, 1, e.Stats().Rooms)

	require.NoError(t, e.Remove(2, 2))
	require.NoError(t, e.Remove(5, 5))

	s := e.Stats()
	assert.Equal(t, 0, s.Furniture)
	assert.Equal(t, 0, s.Rooms)
	g := e.Grid()
	assert.Equal(t, EmptyTile(), g[2][2])
}

func TestEditor_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(3)

	_, err := e.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	e.Randomize()
	e.SetName("Beach House")
	before := e.Grid()
	_, err = e.Save(ctx)
	require.NoError(t, err)

	e.Clear()
	e.SetName("Other")
	require.Equal(t, 0, e.Stats().Walls)

	name, err := e.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Beach House", name)
	assert.Equal(t, before, e.Grid())

	n, err := e.SavedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEditor_LoadRejectsUnknownTagAndKeepsGrid(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySnapshotStore()
	e := NewEditor(store, rand.New(rand.NewSource(1)), zap.NewNop())
	require.NoError(t, e.ApplyTemplate("small"))
	before := e.Grid()

	snap := EncodeSnapshot("broken", NewGrid())
	snap.Grid[4][4].Type = "balcony"
	require.NoError(t, store.Append(ctx, snap))

	_, err := e.Load(ctx)
	require.True(t, errors.Is(err, ErrUnknownTag))
	assert.Equal(t, before, e.Grid())
	assert.Equal(t, DefaultDesignName, e.Name())
}

func TestTemplates_Stats(t *testing.T) {
	cases := []struct {
		name                        string
		walls, doors, windows, furn int
		rooms                       int
	}{
		{"small", 18, 1, 1, 2, 1},
		{"mansion", 47, 1, 4, 0, 4},
		{"apartment", 33, 1, 2, 2, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGrid()
			require.NoError(t, ApplyTemplate(g, tc.name))
			s := g.Stats()
			assert.Equal(t, tc.walls, s.Walls)
			assert.Equal(t, tc.doors, s.Doors)
			assert.Equal(t, tc.windows, s.Windows)
			assert.Equal(t, tc.furn, s.Furniture)
			assert.Equal(t, tc.rooms, s.Rooms)
		})
	}
}

func TestRandomize_OnlyCatalogValues(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		g := NewGrid()
		Randomize(g, rand.New(rand.NewSource(seed)))
		for x := range g {
			for y := range g[x] {
				tile := g[x][y]
				require.NoError(t, tile.Validate())
				if tile.Type == TileFloor {
					require.True(t, tile.Room.Valid())
				}
				if tile.Type == TileFurniture {
					require.True(t, tile.Furniture.Valid())
					require.True(t, x >= 6 && x <= 13 && y >= 6 && y <= 13)
				}
			}
		}
		require.Equal(t, 1, g.Count(TileDoor))
	}
}

type downStore struct{ MemorySnapshotStore }

func (*downStore) Len(context.Context) (int, error) { return 0, errors.New("connection refused") }

func TestEditor_RenderLogsHistoryFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := NewEditor(&downStore{}, rand.New(rand.NewSource(1)), zap.New(core))

	v := e.Render(context.Background())
	assert.Zero(t, v.Saved)
	assert.Len(t, v.Cells, Size)

	entries := logs.FilterMessage("failed to count saved designs").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "connection refused", entries[0].ContextMap()["error"])
}
