package export

import (
	"bytes"
	"testing"
	"time"

	"demohub/internal/car"
	"demohub/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheet}, f.GetSheetList())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestCarDesignsWorkbook(t *testing.T) {
	d := car.DefaultDesign()
	d.Name = "Speed Demon"
	saved := []car.SavedDesign{{
		ID:      "d-1",
		Name:    d.Name,
		Design:  d,
		Price:   27000,
		SavedAt: time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC),
	}}

	data, err := CarDesignsWorkbook(saved)
	require.NoError(t, err)

	rows := readRows(t, data, "Car Designs")
	require.Len(t, rows, 2)
	assert.Equal(t, CarDesignsHeader, rows[0])
	assert.Equal(t, "Speed Demon", rows[1][0])
	assert.Equal(t, "sports", rows[1][1])
	assert.Equal(t, "27000", rows[1][9])
	assert.Equal(t, "2026-05-04 03:02:01", rows[1][10])
}

func TestCarDesignsWorkbook_Empty(t *testing.T) {
	data, err := CarDesignsWorkbook(nil)
	require.NoError(t, err)
	rows := readRows(t, data, "Car Designs")
	require.Len(t, rows, 1)
	assert.Equal(t, CarDesignsHeader, rows[0])
}

func TestPriceHistoryWorkbook(t *testing.T) {
	btc := []market.Point{{Time: "10:00:00", Price: 50000.5}, {Time: "10:00:01", Price: 50010}}
	eth := []market.Point{{Time: "10:00:00", Price: 3000}, {Time: "10:00:01", Price: 2999.25}}

	data, err := PriceHistoryWorkbook(btc, eth)
	require.NoError(t, err)

	rows := readRows(t, data, "Price History")
	require.Len(t, rows, 3)
	assert.Equal(t, PriceHistoryHeader, rows[0])
	assert.Equal(t, []string{"10:00:00", "50000.5", "3000"}, rows[1])
	assert.Equal(t, []string{"10:00:01", "50010", "2999.25"}, rows[2])
}
