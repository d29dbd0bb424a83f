// Package car is the car design studio: fixed part catalogs, pricing,
// simulated performance stats and the per-session studio state.
package car

import (
	"errors"
	"fmt"
)

// ErrUnknownOption is returned for catalog ids that do not exist.
var ErrUnknownOption = errors.New("unknown catalog option")

// Category names one of the independent part catalogs.
type Category string

const (
	CategoryBody    Category = "body_style"
	CategoryWheels  Category = "wheel_style"
	CategoryDecal   Category = "decal"
	CategorySpoiler Category = "spoiler"
)

// Categories in breakdown order.
func Categories() []Category {
	return []Category{CategoryBody, CategoryWheels, CategoryDecal, CategorySpoiler}
}

// Option is one selectable catalog entry.
type Option struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Price  int    `json:"price"`
	Symbol string `json:"symbol"`
}

// Catalog is an ordered, id-keyed option table.
type Catalog struct {
	category Category
	options  []Option
	index    map[string]int
}

func newCatalog(c Category, opts ...Option) *Catalog {
	idx := make(map[string]int, len(opts))
	for i, o := range opts {
		idx[o.ID] = i
	}
	return &Catalog{category: c, options: opts, index: idx}
}

func (c *Catalog) Category() Category { return c.category }

func (c *Catalog) Options() []Option {
	out := make([]Option, len(c.options))
	copy(out, c.options)
	return out
}

func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.options))
	for i, o := range c.options {
		ids[i] = o.ID
	}
	return ids
}

func (c *Catalog) Lookup(id string) (Option, error) {
	i, ok := c.index[id]
	if !ok {
		return Option{}, fmt.Errorf("%s %q: %w", c.category, id, ErrUnknownOption)
	}
	return c.options[i], nil
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

var (
	BodyStyles = newCatalog(CategoryBody,
		Option{"sports", "Sports Car", 25000, "🏎️"},
		Option{"sedan", "Sedan", 20000, "🚗"},
		Option{"suv", "SUV", 30000, "🚙"},
		Option{"truck", "Truck", 35000, "🚚"},
		Option{"convertible", "Convertible", 28000, "🚘"},
	)
	WheelStyles = newCatalog(CategoryWheels,
		Option{"sport", "Sport Wheels", 2000, "⭕"},
		Option{"luxury", "Luxury Rims", 3500, "💎"},
		Option{"offroad", "Off-Road", 2500, "🛞"},
		Option{"classic", "Classic", 1500, "🎯"},
	)
	Decals = newCatalog(CategoryDecal,
		Option{"none", "None", 0, ""},
		Option{"flames", "Flames", 500, "🔥"},
		Option{"stripes", "Racing Stripes", 800, "🏁"},
		Option{"lightning", "Lightning", 600, "⚡"},
		Option{"stars", "Stars", 400, "⭐"},
	)
	Spoilers = newCatalog(CategorySpoiler,
		Option{"none", "None", 0, ""},
		Option{"small", "Small Spoiler", 1200, "▶"},
		Option{"medium", "Medium Spoiler", 1800, "▷"},
		Option{"large", "Large Wing", 2500, "►"},
	)
)

// CatalogFor returns the catalog of a category.
func CatalogFor(c Category) (*Catalog, error) {
	switch c {
	case CategoryBody:
		return BodyStyles, nil
	case CategoryWheels:
		return WheelStyles, nil
	case CategoryDecal:
		return Decals, nil
	case CategorySpoiler:
		return Spoilers, nil
	}
	return nil, fmt.Errorf("category %q: %w", c, ErrUnknownOption)
}
