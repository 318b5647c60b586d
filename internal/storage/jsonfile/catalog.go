// Package jsonfile implements the catalog and order ledger over plain JSON
// files. The catalog file is read-only; the ledger is read in full before
// every mutation and rewritten in full (atomically) after every append.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/voicecart/internal/domain/product"
)

var _ product.Repository = (*Catalog)(nil)

// Catalog is a file-backed product.Repository. The file is loaded lazily on
// first access and kept for the process lifetime; a missing or unparseable
// file yields product.ErrCatalogUnavailable and an empty catalog.
type Catalog struct {
	path string

	once     sync.Once
	products []product.Product
	loadErr  error
}

// NewCatalog creates a Catalog reading from the given JSON file.
func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

func (c *Catalog) load() ([]product.Product, error) {
	c.once.Do(func() {
		data, err := os.ReadFile(c.path)
		if err != nil {
			c.loadErr = errors.Wrapf(product.ErrCatalogUnavailable, "read %s: %v", c.path, err)
			return
		}

		var products []product.Product
		if err := json.Unmarshal(data, &products); err != nil {
			c.loadErr = errors.Wrapf(product.ErrCatalogUnavailable, "parse %s: %v", c.path, err)
			return
		}
		if err := product.ValidateCatalog(products); err != nil {
			c.loadErr = errors.Wrapf(product.ErrCatalogUnavailable, "validate %s: %v", c.path, err)
			return
		}
		c.products = products
	})
	return c.products, c.loadErr
}

// List returns the full catalog in file order.
func (c *Catalog) List(_ context.Context) ([]product.Product, error) {
	products, err := c.load()
	if err != nil {
		return nil, err
	}
	out := make([]product.Product, len(products))
	copy(out, products)
	return out, nil
}

// GetByName resolves a product by exact name match.
func (c *Catalog) GetByName(_ context.Context, name string) (*product.Product, error) {
	products, err := c.load()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].Name == name {
			p := products[i]
			return &p, nil
		}
	}
	return nil, &product.NotFoundError{Name: name}
}

// WriteCatalog writes a validated product list to path atomically. It is
// used by the ingest tool, never by the serving path.
func WriteCatalog(path string, products []product.Product) error {
	if err := product.ValidateCatalog(products); err != nil {
		return err
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode catalog")
	}
	return writeFileAtomic(path, data)
}
