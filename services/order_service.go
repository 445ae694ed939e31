package services

import (
	"context"
	"storefront/models"

	"github.com/google/uuid"
)

type OrderStore interface {
	CreateFromCart(ctx context.Context, cartID uuid.UUID, customerID int) (*models.Order, error)
	GetByID(ctx context.Context, orderID int) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID, page, limit int) ([]models.Order, int, error)
	ListAll(ctx context.Context, status string, page, limit int) ([]models.Order, int, error)
	UpdateStatus(ctx context.Context, orderID int, status models.OrderStatus) error
	Delete(ctx context.Context, orderID int) error
}

type CustomerResolver interface {
	GetCustomerByUserID(ctx context.Context, userID int) (*models.Customer, error)
}

type OrderService struct {
	store     OrderStore
	customers CustomerResolver
}

func NewOrderService(store OrderStore, customers CustomerResolver) *OrderService {
	return &OrderService{store: store, customers: customers}
}

// Checkout converts the cart into an order for the customer behind userID.
// It is intentionally not idempotent: the cart is deleted on success, so a
// retried request fails with ErrCartNotFound instead of creating a second
// order.
func (s *OrderService) Checkout(ctx context.Context, cartID string, userID int) (*models.Order, error) {
	id, err := uuid.Parse(cartID)
	if err != nil {
		return nil, models.ErrCartNotFound
	}

	customer, err := s.customers.GetCustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.store.CreateFromCart(ctx, id, customer.ID)
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int) (*models.Order, error) {
	return s.store.GetByID(ctx, orderID)
}

// GetOwnOrder returns the order only if it belongs to the customer behind
// userID; foreign orders surface as not found.
func (s *OrderService) GetOwnOrder(ctx context.Context, orderID, userID int) (*models.Order, error) {
	customer, err := s.customers.GetCustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customer.ID {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListOwnOrders(ctx context.Context, userID, page, limit int) ([]models.Order, int, error) {
	customer, err := s.customers.GetCustomerByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.store.ListByCustomer(ctx, customer.ID, page, limit)
}

func (s *OrderService) ListAllOrders(ctx context.Context, status string, page, limit int) ([]models.Order, int, error) {
	return s.store.ListAll(ctx, status, page, limit)
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID int, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, models.ErrInvalidStatus
	}

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, models.ErrInvalidStatus
	}

	if err := s.store.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, err
	}
	order.Status = next
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, orderID int) error {
	return s.store.Delete(ctx, orderID)
}
