package models

import "github.com/shopspring/decimal"

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required,min=3"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CategoryRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=6"`
	Description string          `json:"description"`
	CategoryID  int             `json:"category_id" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	Inventory   int             `json:"inventory"`
}

type UpdateProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CategoryID  int              `json:"category_id"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Inventory   *int             `json:"inventory"`
}

type CommentRequest struct {
	Name string `json:"name" binding:"required"`
	Body string `json:"body" binding:"required"`
}

type AddCartItemRequest struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type CreateOrderRequest struct {
	CartID string `json:"cart_id" binding:"required,uuid"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending shipped cancelled"`
}
