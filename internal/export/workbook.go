package export

import (
	"bytes"
	"fmt"

	"demohub/internal/car"
	"demohub/internal/market"

	"github.com/xuri/excelize/v2"
)

// CarDesignsHeader 汽车设计导出表头
var CarDesignsHeader = []string{
	"Name",
	"Body",
	"Wheels",
	"Decal",
	"Spoiler",
	"Body Color",
	"Roof Color",
	"Wheel Color",
	"Window Tint",
	"Price (USD)",
	"Saved At",
}

var carDesignsWidths = []float64{24, 14, 12, 12, 12, 12, 12, 12, 12, 14, 20}

// PriceHistoryHeader 行情历史导出表头
var PriceHistoryHeader = []string{"Time", "BTC (USD)", "ETH (USD)"}

var priceHistoryWidths = []float64{12, 16, 16}

// CarDesignsWorkbook 生成已保存汽车设计的 Excel 文件
func CarDesignsWorkbook(designs []car.SavedDesign) ([]byte, error) {
	rows := make([][]any, 0, len(designs))
	for _, d := range designs {
		rows = append(rows, []any{
			d.Name,
			d.Design.Body,
			d.Design.Wheels,
			d.Design.Decal,
			d.Design.Spoiler,
			d.Design.BodyColor,
			d.Design.RoofColor,
			d.Design.WheelColor,
			d.Design.WindowTint,
			d.Price,
			d.SavedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return writeWorkbook("Car Designs", CarDesignsHeader, carDesignsWidths, rows)
}

// PriceHistoryWorkbook 生成行情历史 Excel 文件；两条序列按下标对齐
func PriceHistoryWorkbook(btc, eth []market.Point) ([]byte, error) {
	n := len(btc)
	if len(eth) > n {
		n = len(eth)
	}
	rows := make([][]any, 0, n)
	for i := 0; i < n; i++ {
		row := []any{"", nil, nil}
		if i < len(btc) {
			row[0] = btc[i].Time
			row[1] = btc[i].Price
		}
		if i < len(eth) {
			row[0] = eth[i].Time
			row[2] = eth[i].Price
		}
		rows = append(rows, row)
	}
	return writeWorkbook("Price History", PriceHistoryHeader, priceHistoryWidths, rows)
}

func writeWorkbook(sheetName string, headers []string, widths []float64, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		if col < len(widths) {
			name, _ := excelize.ColumnNumberToName(col + 1)
			if err := f.SetColWidth(sheetName, name, name, widths[col]); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	for r, row := range rows {
		for c, value := range row {
			if value == nil || value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	// 冻结表头
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}
