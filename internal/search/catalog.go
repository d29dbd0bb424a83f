package search

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCatalog is returned when a products file is unreadable or malformed.
var ErrInvalidCatalog = errors.New("invalid products catalog")

type Product struct {
	ID       int     `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Category string  `json:"category" yaml:"category"`
	Price    float64 `json:"price" yaml:"price"`
}

var defaultProducts = []Product{
	{ID: 1, Name: "Wireless Mouse", Category: "Electronics", Price: 29.99},
	{ID: 2, Name: "Mechanical Keyboard", Category: "Electronics", Price: 89.99},
	{ID: 3, Name: "Coffee Mug", Category: "Kitchen", Price: 12.50},
	{ID: 4, Name: "Notebook", Category: "Stationery", Price: 5.99},
	{ID: 5, Name: "Desk Lamp", Category: "Furniture", Price: 45.00},
	{ID: 6, Name: "USB-C Cable", Category: "Electronics", Price: 9.99},
	{ID: 7, Name: "Water Bottle", Category: "Kitchen", Price: 18.75},
	{ID: 8, Name: "Pen Set", Category: "Stationery", Price: 15.30},
}

// DefaultProducts returns a copy of the built-in catalog.
func DefaultProducts() []Product {
	return append([]Product(nil), defaultProducts...)
}

type productsFile struct {
	Products []Product `yaml:"products"`
}

// LoadProducts reads a YAML catalog:
//
//	products:
//	  - {id: 1, name: Wireless Mouse, category: Electronics, price: 29.99}
//
// An empty path returns the built-in catalog.
func LoadProducts(path string) ([]Product, error) {
	if path == "" {
		return DefaultProducts(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, path, err)
	}
	var f productsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, path, err)
	}
	if err := validateProducts(f.Products); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, path, err)
	}
	return f.Products, nil
}

func validateProducts(ps []Product) error {
	if len(ps) == 0 {
		return errors.New("no products")
	}
	seen := make(map[int]struct{}, len(ps))
	for i, p := range ps {
		if p.Name == "" {
			return fmt.Errorf("product %d: name is required", i)
		}
		if p.Price < 0 {
			return fmt.Errorf("product %q: negative price", p.Name)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("product %q: duplicate id %d", p.Name, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
