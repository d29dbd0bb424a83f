package car

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned for colors that are not #RRGGBB.
var ErrInvalidColor = errors.New("invalid color")

// Design is the current configuration of a car.
type Design struct {
	Name       string `json:"name"`
	BodyColor  string `json:"body_color"`
	RoofColor  string `json:"roof_color"`
	WheelColor string `json:"wheel_color"`
	WindowTint string `json:"window_tint"`
	Body       string `json:"body_style"`
	Wheels     string `json:"wheel_style"`
	Decal      string `json:"decal"`
	Spoiler    string `json:"spoiler"`
}

func DefaultDesign() Design {
	return Design{
		Name:       "My Car Design",
		BodyColor:  "#FF4444",
		RoofColor:  "#333333",
		WheelColor: "#888888",
		WindowTint: "#4A90E2",
		Body:       "sports",
		Wheels:     "sport",
		Decal:      "none",
		Spoiler:    "none",
	}
}

// Choice returns the option id selected for a category.
func (d Design) Choice(c Category) string {
	switch c {
	case CategoryBody:
		return d.Body
	case CategoryWheels:
		return d.Wheels
	case CategoryDecal:
		return d.Decal
	case CategorySpoiler:
		return d.Spoiler
	}
	return ""
}

func (d *Design) setChoice(c Category, id string) {
	switch c {
	case CategoryBody:
		d.Body = id
	case CategoryWheels:
		d.Wheels = id
	case CategoryDecal:
		d.Decal = id
	case CategorySpoiler:
		d.Spoiler = id
	}
}

// Validate checks every selected id against its catalog.
func (d Design) Validate() error {
	for _, c := range Categories() {
		cat, _ := CatalogFor(c)
		if _, err := cat.Lookup(d.Choice(c)); err != nil {
			return err
		}
	}
	return nil
}

// LineItem is one row of the price breakdown.
type LineItem struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Option   Option   `json:"option"`
}

var breakdownLabels = map[Category]string{
	CategoryBody:    "Body",
	CategoryWheels:  "Wheels",
	CategoryDecal:   "Decal",
	CategorySpoiler: "Spoiler",
}

// Breakdown itemizes the four selected options.
func Breakdown(d Design) ([]LineItem, error) {
	items := make([]LineItem, 0, 4)
	for _, c := range Categories() {
		cat, _ := CatalogFor(c)
		opt, err := cat.Lookup(d.Choice(c))
		if err != nil {
			return nil, err
		}
		items = append(items, LineItem{Category: c, Label: breakdownLabels[c], Option: opt})
	}
	return items, nil
}

// Price is the sum of the selected options' prices.
func Price(d Design) (int, error) {
	items, err := Breakdown(d)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, it := range items {
		total += it.Option.Price
	}
	return total, nil
}

// Performance holds the simulated stat bars, each in [0,1].
type Performance struct {
	Speed float64 `json:"speed"`
	Style float64 `json:"style"`
	Value float64 `json:"value"`
}

// Stats starts every bar at 0.5 and adds fixed increments per selection.
func Stats(d Design) Performance {
	p := Performance{Speed: 0.5, Style: 0.5, Value: 0.5}
	switch d.Body {
	case "sports":
		p.Speed += 0.3
		p.Style += 0.2
	case "sedan":
		p.Value += 0.3
	case "suv":
		p.Value += 0.2
	}
	switch d.Wheels {
	case "sport":
		p.Speed += 0.2
		p.Style += 0.1
	case "luxury":
		p.Style += 0.3
	}
	if d.Decal != "none" {
		p.Style += 0.1
	}
	if d.Spoiler != "none" {
		p.Speed += 0.1
		p.Style += 0.1
	}
	p.Speed = math.Min(p.Speed, 1.0)
	p.Style = math.Min(p.Style, 1.0)
	p.Value = math.Min(p.Value, 1.0)
	return p
}

func parseHex(hex string) (r, g, b int, err error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), nil
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// AdjustColor shifts every channel by amount, clamped to 0..255.
func AdjustColor(hex string, amount int) (string, error) {
	r, g, b, err := parseHex(hex)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("#%02x%02x%02x", clampByte(r+amount), clampByte(g+amount), clampByte(b+amount)), nil
}

func randomColor(rng *rand.Rand) string {
	return fmt.Sprintf("#%02x%02x%02x", rng.Intn(256), rng.Intn(256), rng.Intn(256))
}

func pick(rng *rand.Rand, c *Catalog) string {
	ids := c.IDs()
	return ids[rng.Intn(len(ids))]
}

// RandomDesign draws every part uniformly from its catalog. The window tint is kept.
func RandomDesign(rng *rand.Rand, base Design) Design {
	d := base
	d.BodyColor = randomColor(rng)
	d.RoofColor = randomColor(rng)
	d.WheelColor = randomColor(rng)
	d.Body = pick(rng, BodyStyles)
	d.Wheels = pick(rng, WheelStyles)
	d.Decal = pick(rng, Decals)
	d.Spoiler = pick(rng, Spoilers)
	d.Name = fmt.Sprintf("Random Design #%d", 1000+rng.Intn(9000))
	return d
}

// Preset is a gallery design; it overrides only the fields it names.
type Preset struct {
	Name      string `json:"name"`
	Body      string `json:"body_style"`
	BodyColor string `json:"body_color"`
	Wheels    string `json:"wheel_style"`
	Decal     string `json:"decal"`
	Spoiler   string `json:"spoiler"`
}

func (p Preset) Apply(d Design) Design {
	d.Name = p.Name
	d.Body = p.Body
	d.BodyColor = p.BodyColor
	d.Wheels = p.Wheels
	d.Decal = p.Decal
	d.Spoiler = p.Spoiler
	return d
}

var presets = []Preset{
	{"Speed Demon", "sports", "#FF0000", "sport", "flames", "large"},
	{"Luxury Cruiser", "sedan", "#1E1E1E", "luxury", "none", "none"},
	{"Adventure Seeker", "suv", "#228B22", "offroad", "lightning", "medium"},
	{"Racing Champion", "sports", "#0000FF", "sport", "stripes", "large"},
}

func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}
