package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	pkgerrors "github.com/dailykart/dailykart-backend/pkg/errors"
)

// Loader resolves products from the catalog service.
type Loader interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, id string) (*Product, error)

func (fn LoaderFunc) GetProduct(ctx context.Context, id string) (*Product, error) {
	return fn(ctx, id)
}

// StaticLoader serves products from an in-memory set. It backs tests and the
// local wiring until the catalog service client lands.
type StaticLoader struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewStaticLoader builds a loader over copies of the provided products.
func NewStaticLoader(products ...Product) *StaticLoader {
	set := make(map[string]Product, len(products))
	for _, p := range products {
		set[p.ID] = p
	}
	return &StaticLoader{products: set}
}

// GetProduct returns a copy of the product or a not-found error.
func (l *StaticLoader) GetProduct(_ context.Context, id string) (*Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	copied := p
	return &copied, nil
}

// NewFileLoader seeds a StaticLoader from a JSON file holding an array of
// products.
func NewFileLoader(path string) (*StaticLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	return NewStaticLoader(products...), nil
}

// Put inserts or replaces a product. Intended for fixtures.
func (l *StaticLoader) Put(p Product) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.products[p.ID] = p
}
