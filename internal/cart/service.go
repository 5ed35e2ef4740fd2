package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/openmart/martcart/internal/cache"
	"github.com/openmart/martcart/internal/cartstore"
	"github.com/openmart/martcart/internal/catalog"
	"github.com/openmart/martcart/internal/domain"
	"github.com/openmart/martcart/internal/pricing"
)

// Service owns the authoritative cart for each user. Mutations are
// serialized per user: the merge-on-add step is a read-then-write, so
// concurrent sessions for the same cart need mutual exclusion.
type Service struct {
	repo    cartstore.Repository
	cache   cache.CartCache
	catalog catalog.Store
	sfg     singleflight.Group // Prevents cache stampede
	locks   lockTable
}

func NewService(repo cartstore.Repository, cache cache.CartCache, catalog catalog.Store) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		catalog: catalog,
	}
}

func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {

		crt, err := s.cache.Get(ctx, userID)
		if err == nil {
			return crt, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		crt, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil && errors.Is(errGet, cartstore.ErrCartNotFound) { // no cart yet, return empty cart
			return &domain.Cart{
				UserID:    userID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), userID, crt)
			if errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()

		return crt, nil // cart was not in cache, return it from repo
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem resolves the product from the catalog and merges it into the
// user's cart. The failed path leaves the stored cart untouched.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (*domain.Cart, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("resolve product %s: %w", productID, err)
	}

	crt, err := s.loadForMutation(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := Add(crt, *product, qty); err != nil {
		return nil, err
	}

	return crt, s.persist(ctx, crt)
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, lineItemID string, qty int) (*domain.Cart, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	crt, err := s.loadForMutation(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := UpdateQuantity(crt, lineItemID, qty); err != nil {
		return nil, err
	}

	return crt, s.persist(ctx, crt)
}

func (s *Service) RemoveItem(ctx context.Context, userID, lineItemID string) (*domain.Cart, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	crt, err := s.loadForMutation(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := Remove(crt, lineItemID); err != nil {
		return nil, err
	}

	return crt, s.persist(ctx, crt)
}

// Clear empties the cart. Clearing an already-empty cart is a no-op.
func (s *Service) Clear(ctx context.Context, userID string) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, cartstore.ErrCartNotFound) {
		log.Printf("repo delete cart error: %v \n", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// Summary recomputes the price summary over the current collection.
// It is derived on every call and therefore never stale.
func (s *Service) Summary(ctx context.Context, userID string, charges pricing.Charges, currency string) (domain.PriceSummary, error) {
	crt, err := s.GetCart(ctx, userID)
	if err != nil {
		return domain.PriceSummary{}, err
	}
	return pricing.Aggregate(crt.Items, charges, currency), nil
}

func (s *Service) loadForMutation(ctx context.Context, userID string) (*domain.Cart, error) {
	crt, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, cartstore.ErrCartNotFound) {
		now := time.Now()
		return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return crt, nil
}

func (s *Service) persist(ctx context.Context, crt *domain.Cart) error {
	if err := s.repo.UpsertCart(ctx, crt); err != nil {
		log.Printf("repo upsert cart error: %v \n", err)
		return err
	}

	s.invalidateCache(crt.UserID)
	return nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v \n", err)
	}
}

// lockTable hands out one mutex per cart key.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (lt *lockTable) lock(key string) func() {
	lt.mu.Lock()
	if lt.locks == nil {
		lt.locks = make(map[string]*sync.Mutex)
	}
	m, ok := lt.locks[key]
	if !ok {
		m = &sync.Mutex{}
		lt.locks[key] = m
	}
	lt.mu.Unlock()

	m.Lock()
	return m.Unlock
}
