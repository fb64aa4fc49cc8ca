package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/schema"
)

var _ ProductStore = (*InMemoryStore)(nil)

// InMemoryStore implements ProductStore using an in-memory map.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[string]schema.Product
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[string]schema.Product),
	}
}

func (s *InMemoryStore) FetchByID(_ context.Context, id string) (*schema.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *InMemoryStore) ScanAll(_ context.Context) ([]schema.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]schema.Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	return list, nil
}

// ScanPage walks products in id order.
func (s *InMemoryStore) ScanPage(_ context.Context, cursor string, limit int32) ([]schema.Product, string, error) {
	if limit <= 0 {
		return nil, "", fmt.Errorf("page limit must be positive, got %d", limit)
	}
	startID, err := decodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.products))
	for id := range s.products {
		if id > startID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	page := make([]schema.Product, 0, min(len(ids), int(limit)))
	for _, id := range ids {
		if len(page) == int(limit) {
			break
		}
		page = append(page, s.products[id])
	}

	var next string
	if len(ids) > len(page) {
		next = encodeCursor(page[len(page)-1].ID)
	}
	return page, next, nil
}

func (s *InMemoryStore) Insert(_ context.Context, product schema.Product) (*schema.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[product.ID] = product
	return &product, nil
}

func (s *InMemoryStore) MergeUpdate(_ context.Context, id string, patch schema.ProductPatch) (*schema.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, catalogerrors.ErrProductNotFound
	}
	patch.Apply(&p)
	s.products[id] = p
	return &p, nil
}

func (s *InMemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	return nil
}

func (s *InMemoryStore) Ping(context.Context) error {
	return nil
}
