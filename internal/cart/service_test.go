package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmart/martcart/internal/cache"
	"github.com/openmart/martcart/internal/cartstore"
	"github.com/openmart/martcart/internal/catalog"
	"github.com/openmart/martcart/internal/domain"
	"github.com/openmart/martcart/internal/pricing"
)

type mockRepository struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockRepository) GetCart(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cartstore.ErrCartNotFound
	}
	return m.cart, nil
}

func (m *mockRepository) UpsertCart(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.cart = c
	return nil
}

func (m *mockRepository) DeleteCart(_ context.Context, _ string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return cartstore.ErrCartNotFound
	}
	m.cart = nil
	return nil
}

func (m *mockRepository) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

func (m *mockCache) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

func seededCatalog() *catalog.MemoryStore {
	s := catalog.NewMemoryStore()
	s.Put(rice())
	s.Put(oil())
	return s
}

func TestServiceGetCart_CacheHit(t *testing.T) {
	crt := &domain.Cart{
		UserID: "123",
		Items:  []domain.LineItem{{ID: "li-1", ProductID: "p1", Quantity: 3}},
	}
	mockRepo := &mockRepository{cart: nil} // repo should NOT be called
	mockC := &mockCache{cart: crt}

	sut := NewService(mockRepo, mockC, seededCatalog())
	ret, err := sut.GetCart(context.Background(), "123")
	require.NoError(t, err)
	assert.Len(t, ret.Items, 1)
	assert.Equal(t, "p1", ret.Items[0].ProductID)
}

func TestServiceGetCart_MissFillsCache(t *testing.T) {
	crt := &domain.Cart{
		UserID:    "123",
		Items:     []domain.LineItem{{ID: "li-1", ProductID: "p1", Quantity: 5}},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	mockRepo := &mockRepository{cart: crt}
	mockC := &mockCache{cart: nil}

	sut := NewService(mockRepo, mockC, seededCatalog())
	ret, err := sut.GetCart(context.Background(), "123")
	require.NoError(t, err)
	assert.Len(t, ret.Items, 1)

	require.Eventually(t, func() bool {
		return mockC.getCart() != nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cart was not set in cache")
}

func TestServiceGetCart_NoCartReturnsEmpty(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}

	sut := NewService(mockRepo, mockC, seededCatalog())
	ret, err := sut.GetCart(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "123", ret.UserID)
	assert.Empty(t, ret.Items)
}

func TestServiceGetCart_RepoError(t *testing.T) {
	mockRepo := &mockRepository{err: fmt.Errorf("database error")}
	mockC := &mockCache{}

	sut := NewService(mockRepo, mockC, seededCatalog())
	ret, err := sut.GetCart(context.Background(), "123")
	require.ErrorContains(t, err, "database error")
	assert.Nil(t, ret)
}

func TestServiceAddItem_CreatesCartAndInvalidatesCache(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{cart: &domain.Cart{UserID: "123"}}

	sut := NewService(mockRepo, mockC, seededCatalog())
	ret, err := sut.AddItem(context.Background(), "123", "p1", 2)
	require.NoError(t, err)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, 2, ret.Items[0].Quantity)

	stored := mockRepo.getCart()
	require.NotNil(t, stored)
	assert.Len(t, stored.Items, 1)

	require.Eventually(t, func() bool {
		return mockC.getCart() == nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cache was not invalidated")
}

func TestServiceAddItem_MergesQuantities(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}

	sut := NewService(mockRepo, mockC, seededCatalog())
	_, err := sut.AddItem(context.Background(), "123", "p1", 2)
	require.NoError(t, err)
	ret, err := sut.AddItem(context.Background(), "123", "p1", 3)
	require.NoError(t, err)

	require.Len(t, ret.Items, 1)
	assert.Equal(t, 5, ret.Items[0].Quantity)
}

func TestServiceAddItem_UnknownProduct(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}

	sut := NewService(mockRepo, mockC, seededCatalog())
	_, err := sut.AddItem(context.Background(), "123", "ghost", 1)
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
	assert.Nil(t, mockRepo.getCart())
}

func TestServiceAddItem_OutOfStockLeavesCartUnchanged(t *testing.T) {
	store := seededCatalog()
	require.NoError(t, store.SetStock("p1", 0))

	mockRepo := &mockRepository{}
	mockC := &mockCache{}

	sut := NewService(mockRepo, mockC, store)
	_, err := sut.AddItem(context.Background(), "123", "p1", 1)
	require.ErrorIs(t, err, ErrOutOfStock)
	assert.Nil(t, mockRepo.getCart())
}

func TestServiceUpdateQuantity_InvalidAndOutOfStock(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}

	sut := NewService(mockRepo, mockC, seededCatalog())
	added, err := sut.AddItem(context.Background(), "123", "p1", 2)
	require.NoError(t, err)
	itemID := added.Items[0].ID

	_, err = sut.UpdateQuantity(context.Background(), "123", itemID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = sut.UpdateQuantity(context.Background(), "123", itemID, 10) // stock is 5
	assert.ErrorIs(t, err, ErrOutOfStock)

	// stored collection unchanged by either failure
	assert.Equal(t, 2, mockRepo.getCart().Items[0].Quantity)

	ret, err := sut.UpdateQuantity(context.Background(), "123", itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, ret.Items[0].Quantity)
}

func TestServiceRemoveItem(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}

	sut := NewService(mockRepo, mockC, seededCatalog())
	added, err := sut.AddItem(context.Background(), "123", "p1", 2)
	require.NoError(t, err)

	ret, err := sut.RemoveItem(context.Background(), "123", added.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, ret.Items)

	_, err = sut.RemoveItem(context.Background(), "123", added.Items[0].ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestServiceClear_IdempotentAndZeroSummary(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}

	sut := NewService(mockRepo, mockC, seededCatalog())
	_, err := sut.AddItem(context.Background(), "123", "p1", 2)
	require.NoError(t, err)

	require.NoError(t, sut.Clear(context.Background(), "123"))
	require.NoError(t, sut.Clear(context.Background(), "123")) // idempotent

	s, err := sut.Summary(context.Background(), "123", pricing.Charges{}, "USD")
	require.NoError(t, err)
	assert.Equal(t, 0, s.TotalItems)
	assert.True(t, s.GrandTotal.IsZero())
}

func TestServiceSummary_NeverStale(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}

	sut := NewService(mockRepo, mockC, seededCatalog())
	added, err := sut.AddItem(context.Background(), "123", "p1", 2)
	require.NoError(t, err)

	s, err := sut.Summary(context.Background(), "123", pricing.Charges{}, "USD")
	require.NoError(t, err)
	assert.True(t, s.Subtotal.Equal(decimal.RequireFromString("180.00")))

	_, err = sut.UpdateQuantity(context.Background(), "123", added.Items[0].ID, 3)
	require.NoError(t, err)

	s, err = sut.Summary(context.Background(), "123", pricing.Charges{Tax: decimal.RequireFromString("5.00")}, "USD")
	require.NoError(t, err)
	assert.True(t, s.Subtotal.Equal(decimal.RequireFromString("270.00")))
	assert.True(t, s.GrandTotal.Equal(decimal.RequireFromString("275.00")))
}
