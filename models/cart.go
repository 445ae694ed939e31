package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID         uuid.UUID       `json:"id"`
	Items      []CartItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

type CartItem struct {
	ID          int             `json:"id"`
	CartID      uuid.UUID       `json:"cart_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	ItemTotal   decimal.Decimal `json:"item_total"`
}
