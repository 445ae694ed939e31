package services

import (
	"context"
	"storefront/models"

	"github.com/google/uuid"
)

type CartStore interface {
	CreateCart(ctx context.Context) (*models.Cart, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error)
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
	AddOrIncrementItem(ctx context.Context, cartID uuid.UUID, productID, quantity int) (*models.CartItem, error)
	SetItemQuantity(ctx context.Context, cartID uuid.UUID, itemID, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, cartID uuid.UUID, itemID int) error
}

type CartService struct {
	store CartStore
}

func NewCartService(store CartStore) *CartService {
	return &CartService{store: store}
}

func (s *CartService) CreateCart(ctx context.Context) (*models.Cart, error) {
	return s.store.CreateCart(ctx)
}

func (s *CartService) GetCart(ctx context.Context, cartID string) (*models.Cart, error) {
	id, err := uuid.Parse(cartID)
	if err != nil {
		return nil, models.ErrCartNotFound
	}
	return s.store.GetCart(ctx, id)
}

func (s *CartService) DeleteCart(ctx context.Context, cartID string) error {
	id, err := uuid.Parse(cartID)
	if err != nil {
		return models.ErrCartNotFound
	}
	return s.store.DeleteCart(ctx, id)
}

// AddItem adds quantity of a product to the cart, incrementing the existing
// line when one exists for the same product.
func (s *CartService) AddItem(ctx context.Context, cartID string, productID, quantity int) (*models.CartItem, error) {
	id, err := uuid.Parse(cartID)
	if err != nil {
		return nil, models.ErrCartNotFound
	}
	if quantity <= 0 {
		return nil, models.ErrInvalidQuantity
	}
	return s.store.AddOrIncrementItem(ctx, id, productID, quantity)
}

func (s *CartService) SetItemQuantity(ctx context.Context, cartID string, itemID, quantity int) (*models.CartItem, error) {
	id, err := uuid.Parse(cartID)
	if err != nil {
		return nil, models.ErrCartNotFound
	}
	if quantity <= 0 {
		return nil, models.ErrInvalidQuantity
	}
	return s.store.SetItemQuantity(ctx, id, itemID, quantity)
}

func (s *CartService) RemoveItem(ctx context.Context, cartID string, itemID int) error {
	id, err := uuid.Parse(cartID)
	if err != nil {
		return models.ErrCartNotFound
	}
	return s.store.RemoveItem(ctx, id, itemID)
}
