// Package catalog is the read-only list of purchasable models.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Size is the display footprint of a model, in world units, after scaling.
type Size struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
	Depth  float64 `yaml:"depth" json:"depth"`
}

// Product describes one purchasable item. Products never change after load.
type Product struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Price       float64 `yaml:"price" json:"price"`
	AssetURL    string  `yaml:"url" json:"url"`
	Rotation    float64 `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	Scale       float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
	Size        Size    `yaml:"size,omitempty" json:"size,omitempty"`
}

// Catalog indexes products by id and by asset URL.
type Catalog struct {
	products []Product
	byKey    map[string]int
}

type file struct {
	Products []Product `yaml:"products"`
}

// New validates products and indexes them. Ids and URLs must be unique.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byKey:    make(map[string]int, len(products)*2),
	}
	for i, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: product %d has no id", ErrInvalidProduct, i)
		}
		if p.AssetURL == "" {
			return nil, fmt.Errorf("%w: product %q has no url", ErrInvalidProduct, p.ID)
		}
		if p.Price < 0 || math.IsNaN(p.Price) {
			return nil, fmt.Errorf("%w: product %q has price %v", ErrInvalidProduct, p.ID, p.Price)
		}
		if p.Scale == 0 {
			p.Scale = 1
		}
		if p.Size == (Size{}) {
			p.Size = Size{Width: 1, Height: 1, Depth: 1}
		}
		for _, key := range []string{p.ID, p.AssetURL} {
			if _, dup := c.byKey[key]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateProduct, key)
			}
			c.byKey[key] = len(c.products)
		}
		c.products = append(c.products, p)
	}
	return c, nil
}

// Load reads a YAML catalog of the form `products: [...]`. A file without
// products is rejected with ErrInvalidProduct.
func Load(r io.Reader) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(f.Products) == 0 {
		return nil, fmt.Errorf("%w: catalog has no products", ErrInvalidProduct)
	}
	return New(f.Products)
}

// LoadFile reads a YAML catalog from disk. An empty path yields Default.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Find looks a product up by id or by asset URL.
func (c *Catalog) Find(key string) (Product, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Price returns the unit price of id; unknown ids report false.
func (c *Catalog) Price(id string) (float64, bool) {
	p, ok := c.Find(id)
	return p.Price, ok
}

// Products returns the catalog in declaration order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int { return len(c.products) }
