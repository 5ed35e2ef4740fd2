package orders

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmart/martcart/internal/domain"
	"github.com/openmart/martcart/internal/status"
)

type mockOrderRepo struct {
	m        sync.Mutex
	statuses map[uuid.UUID]status.Status
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{statuses: make(map[uuid.UUID]status.Status)}
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.statuses[order.ID] = order.Status
	return nil
}

func (m *mockOrderRepo) GetOrderByID(context.Context, uuid.UUID) (*domain.Order, error) {
	return nil, ErrOrderNotFound
}

func (m *mockOrderRepo) GetOrderByIdempotencyKey(context.Context, string) (*domain.Order, error) {
	return nil, ErrOrderNotFound
}

func (m *mockOrderRepo) ListOrdersByUserID(context.Context, string) ([]*domain.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, to status.Status) error {
	m.m.Lock()
	defer m.m.Unlock()
	from, ok := m.statuses[id]
	if !ok {
		return ErrOrderNotFound
	}
	if !status.CanTransition(from, to) {
		return ErrInvalidTransition
	}
	m.statuses[id] = to
	return nil
}

func (m *mockOrderRepo) getStatus(id uuid.UUID) status.Status {
	m.m.Lock()
	defer m.m.Unlock()
	return m.statuses[id]
}

func TestApply_MovesOrderForward(t *testing.T) {
	repo := newMockOrderRepo()
	orderID := uuid.New()
	require.NoError(t, repo.CreateOrder(context.Background(), &domain.Order{ID: orderID, Status: status.Pending}))

	c := &StatusConsumer{repo: repo}

	err := c.Apply(context.Background(), []byte(`{"order_id":"`+orderID.String()+`","status":"accepted"}`))
	require.NoError(t, err)
	assert.Equal(t, status.Accepted, repo.getStatus(orderID))
}

func TestApply_UnknownStatusResolvesToPendingAndIsRejected(t *testing.T) {
	repo := newMockOrderRepo()
	orderID := uuid.New()
	require.NoError(t, repo.CreateOrder(context.Background(), &domain.Order{ID: orderID, Status: status.Accepted}))

	c := &StatusConsumer{repo: repo}

	err := c.Apply(context.Background(), []byte(`{"order_id":"`+orderID.String()+`","status":"warehouse-exploded"}`))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, status.Accepted, repo.getStatus(orderID))
}

func TestApply_BadPayloads(t *testing.T) {
	c := &StatusConsumer{repo: newMockOrderRepo()}

	assert.Error(t, c.Apply(context.Background(), []byte(`{not json`)))
	assert.Error(t, c.Apply(context.Background(), []byte(`{"order_id":"not-a-uuid","status":"accepted"}`)))
}

func TestApply_UnknownOrder(t *testing.T) {
	c := &StatusConsumer{repo: newMockOrderRepo()}

	err := c.Apply(context.Background(), []byte(`{"order_id":"`+uuid.NewString()+`","status":"accepted"}`))
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
