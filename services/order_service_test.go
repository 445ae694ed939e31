package services

import (
	"context"
	"storefront/models"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderStore struct {
	carts       map[uuid.UUID][]models.OrderItem
	orders      map[int]*models.Order
	nextOrderID int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		carts:  map[uuid.UUID][]models.OrderItem{},
		orders: map[int]*models.Order{},
	}
}

func (f *fakeOrderStore) CreateFromCart(ctx context.Context, cartID uuid.UUID, customerID int) (*models.Order, error) {
	items, ok := f.carts[cartID]
	if !ok {
		return nil, models.ErrCartNotFound
	}
	if len(items) == 0 {
		return nil, models.ErrEmptyCart
	}

	f.nextOrderID++
	order := &models.Order{
		ID:         f.nextOrderID,
		CustomerID: customerID,
		Status:     models.OrderStatusPending,
		Items:      items,
		Total:      decimal.Zero,
		CreatedAt:  time.Now(),
	}
	for _, item := range items {
		order.Total = order.Total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	f.orders[order.ID] = order
	delete(f.carts, cartID)
	return order, nil
}

func (f *fakeOrderStore) GetByID(ctx context.Context, orderID int) (*models.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrderStore) ListByCustomer(ctx context.Context, customerID, page, limit int) ([]models.Order, int, error) {
	out := []models.Order{}
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (f *fakeOrderStore) ListAll(ctx context.Context, status string, page, limit int) ([]models.Order, int, error) {
	out := []models.Order{}
	for _, o := range f.orders {
		if status == "" || string(o.Status) == status {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (f *fakeOrderStore) UpdateStatus(ctx context.Context, orderID int, status models.OrderStatus) error {
	order, ok := f.orders[orderID]
	if !ok {
		return models.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (f *fakeOrderStore) Delete(ctx context.Context, orderID int) error {
	if _, ok := f.orders[orderID]; !ok {
		return models.ErrOrderNotFound
	}
	delete(f.orders, orderID)
	return nil
}

type fakeCustomerResolver struct {
	customers map[int]*models.Customer
}

func (f *fakeCustomerResolver) GetCustomerByUserID(ctx context.Context, userID int) (*models.Customer, error) {
	customer, ok := f.customers[userID]
	if !ok {
		return nil, models.ErrCustomerNotFound
	}
	return customer, nil
}

func newOrderFixture() (*fakeOrderStore, *OrderService, uuid.UUID) {
	store := newFakeOrderStore()
	resolver := &fakeCustomerResolver{customers: map[int]*models.Customer{
		7: {ID: 42, UserID: 7, FullName: "Test Customer"},
	}}
	cartID := uuid.New()
	store.carts[cartID] = []models.OrderItem{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
	}
	return store, NewOrderService(store, resolver), cartID
}

func TestCheckoutCreatesOrderFromCart(t *testing.T) {
	ctx := context.Background()
	_, svc, cartID := newOrderFixture()

	order, err := svc.Checkout(ctx, cartID.String(), 7)
	require.NoError(t, err)
	assert.Equal(t, 42, order.CustomerID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("25.00")),
		"expected 25.00, got %s", order.Total)
}

func TestCheckoutIsNotIdempotent(t *testing.T) {
	ctx := context.Background()
	_, svc, cartID := newOrderFixture()

	_, err := svc.Checkout(ctx, cartID.String(), 7)
	require.NoError(t, err)

	// the cart was deleted on success, so a retried request cannot
	// create a second order
	_, err = svc.Checkout(ctx, cartID.String(), 7)
	assert.ErrorIs(t, err, models.ErrCartNotFound)
}

func TestCheckoutUnknownCart(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newOrderFixture()

	_, err := svc.Checkout(ctx, uuid.NewString(), 7)
	assert.ErrorIs(t, err, models.ErrCartNotFound)

	_, err = svc.Checkout(ctx, "not-a-uuid", 7)
	assert.ErrorIs(t, err, models.ErrCartNotFound)
}

func TestCheckoutEmptyCart(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := newOrderFixture()

	emptyCartID := uuid.New()
	store.carts[emptyCartID] = []models.OrderItem{}

	_, err := svc.Checkout(ctx, emptyCartID.String(), 7)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assert.Empty(t, store.orders, "no order may be created for an empty cart")
}

func TestCheckoutUnknownCustomer(t *testing.T) {
	ctx := context.Background()
	store, svc, cartID := newOrderFixture()

	_, err := svc.Checkout(ctx, cartID.String(), 999)
	assert.ErrorIs(t, err, models.ErrCustomerNotFound)
	assert.Contains(t, store.carts, cartID, "cart must survive a failed checkout")
}

func TestGetOwnOrderHidesForeignOrders(t *testing.T) {
	ctx := context.Background()
	store, svc, cartID := newOrderFixture()

	order, err := svc.Checkout(ctx, cartID.String(), 7)
	require.NoError(t, err)

	// a second customer must not see customer 42's order
	store.orders[order.ID].CustomerID = 43
	_, err = svc.GetOwnOrder(ctx, order.ID, 7)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestUpdateStatusValidatesTransitions(t *testing.T) {
	ctx := context.Background()
	_, svc, cartID := newOrderFixture()

	order, err := svc.Checkout(ctx, cartID.String(), 7)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderStatusPending)
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderStatus("refunded"))
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}
