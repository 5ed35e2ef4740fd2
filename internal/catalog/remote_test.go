package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmart/martcart/internal/domain"
)

func TestClientGetProduct_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/p1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":             "p1",
			"name":           "Basmati Rice 5kg",
			"original_price": "100.00",
			"discount_price": "90.00",
			"stock":          5,
			"shop_id":        "shop-1",
			"shop_name":      "Green Grocer",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	p, err := c.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, 5, p.Stock)
	assert.True(t, p.DiscountPrice.Equal(decimal.RequireFromString("90.00")))
	assert.Equal(t, "Green Grocer", p.ShopName)
}

func TestClientGetProduct_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestClientGetProduct_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	for i := 0; i < 5; i++ {
		_, err := c.GetProduct(context.Background(), "p1")
		require.Error(t, err)
	}

	_, err := c.GetProduct(context.Background(), "p1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestClientDeduct(t *testing.T) {
	var got stockRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/deduct", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Deduct(context.Background(), []domain.LineItem{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestClientDeduct_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Deduct(context.Background(), []domain.LineItem{{ProductID: "p1", Quantity: 2}})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestClientRestore(t *testing.T) {
	var got stockRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/restore", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Restore(context.Background(), []domain.LineItem{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.Equal(t, 2, got.Items[0].Quantity)
}
