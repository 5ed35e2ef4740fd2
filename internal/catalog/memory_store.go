package catalog

import (
	"context"
	"sync"

	"github.com/openmart/martcart/internal/domain"
)

// MemoryStore implements Store with in-memory storage. Suitable for
// tests and single-node deployments where the catalog is seeded at
// startup.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]*domain.Product),
	}
}

// Put inserts or replaces a product.
func (s *MemoryStore) Put(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

// SetStock sets the stock level for an existing product.
func (s *MemoryStore) SetStock(productID string, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[productID]
	if !exists {
		return ErrProductNotFound
	}
	p.Stock = stock
	return nil
}

// GetProduct returns a copy of the product with the given ID.
func (s *MemoryStore) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

// Deduct removes stock for all line items, or none of them.
func (s *MemoryStore) Deduct(_ context.Context, items []domain.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate all items have sufficient stock
	for _, item := range items {
		p, exists := s.products[item.ProductID]
		if !exists {
			return ErrProductNotFound
		}
		if p.Stock < item.Quantity {
			return ErrInsufficientStock
		}
	}

	// Second pass: deduct
	for _, item := range items {
		s.products[item.ProductID].Stock -= item.Quantity
	}
	return nil
}

// Restore adds stock back for all line items.
func (s *MemoryStore) Restore(_ context.Context, items []domain.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		p, exists := s.products[item.ProductID]
		if !exists {
			return ErrProductNotFound
		}
		p.Stock += item.Quantity
	}
	return nil
}
