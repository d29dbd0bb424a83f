package market

import (
	"context"
	"fmt"
)

// MinSurfacePoints is how many samples the surface needs before it is drawn.
const MinSurfacePoints = 5

type Series struct {
	Name  string    `json:"name"`
	Color string    `json:"color"`
	X     []string  `json:"x"`
	Y     []float64 `json:"y"`
}

type LineChart struct {
	Title  string   `json:"title"`
	XTitle string   `json:"xaxis_title"`
	YTitle string   `json:"yaxis_title"`
	Series []Series `json:"series"`
}

// SurfaceChart rows are assets (0=BTC, 1=ETH), columns are samples.
type SurfaceChart struct {
	Title      string      `json:"title"`
	Z          [][]float64 `json:"z"`
	Colorscale string      `json:"colorscale"`
}

// AllocationChart 持仓分布（marker 大小按占比缩放到 50）
type AllocationChart struct {
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Sizes  []float64 `json:"sizes"`
	Colors []string  `json:"colors"`
}

type Charts struct {
	Prices     LineChart        `json:"prices"`
	Surface    *SurfaceChart    `json:"surface,omitempty"`
	Allocation *AllocationChart `json:"allocation,omitempty"`
}

func seriesOf(name, color string, pts []Point) Series {
	s := Series{Name: name, Color: color, X: make([]string, len(pts)), Y: make([]float64, len(pts))}
	for i, p := range pts {
		s.X[i] = p.Time
		s.Y[i] = p.Price
	}
	return s
}

// AllocationSizes scales each value to v/sum*50. A zero sum yields zero sizes.
func AllocationSizes(values []float64) []float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	out := make([]float64, len(values))
	if sum == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / sum * 50
	}
	return out
}

// Charts builds the plotting datasets from the current history.
func (f *Feed) Charts() Charts {
	btc, eth := f.History()
	c := Charts{
		Prices: LineChart{
			Title:  "Cryptocurrency Prices",
			XTitle: "Time",
			YTitle: "Price (USD)",
			Series: []Series{
				seriesOf("BTC", "orange", btc),
				seriesOf("ETH", "blue", eth),
			},
		},
	}

	if len(btc) >= MinSurfacePoints {
		c.Surface = &SurfaceChart{
			Title:      "3D Price Surface",
			Z:          [][]float64{c.Prices.Series[0].Y, c.Prices.Series[1].Y},
			Colorscale: "Viridis",
		}
	}

	if len(btc) > 0 && len(eth) > 0 {
		f.mu.Lock()
		p := f.portfolio
		f.mu.Unlock()
		values := []float64{
			p.Cash,
			p.BTC * btc[len(btc)-1].Price,
			p.ETH * eth[len(eth)-1].Price,
		}
		c.Allocation = &AllocationChart{
			Title:  "3D Portfolio Allocation",
			Labels: []string{"Cash", "BTC", "ETH"},
			Values: values,
			Sizes:  AllocationSizes(values),
			Colors: []string{"green", "orange", "blue"},
		}
	}
	return c
}

// View is the rendered dashboard.
type View struct {
	Portfolio []string `json:"portfolio"`
	Total     float64  `json:"total"`
	BTC       float64  `json:"btc"`
	ETH       float64  `json:"eth"`
	Running   bool     `json:"running"`
	Charts    Charts   `json:"charts"`
}

func (f *Feed) Render(_ context.Context) View {
	f.mu.Lock()
	p, btc, eth, total := f.portfolio, f.btc, f.eth, f.total
	running := f.cancel != nil
	f.mu.Unlock()

	return View{
		Portfolio: []string{
			fmt.Sprintf("Cash: $%.2f", p.Cash),
			fmt.Sprintf("BTC: %.4f ($%.2f)", p.BTC, p.BTC*btc),
			fmt.Sprintf("ETH: %.4f ($%.2f)", p.ETH, p.ETH*eth),
			fmt.Sprintf("Total Value: $%.2f", total),
		},
		Total:   total,
		BTC:     btc,
		ETH:     eth,
		Running: running,
		Charts:  f.Charts(),
	}
}
