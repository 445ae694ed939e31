package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validNextStatus = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:   {OrderStatusShipped: true, OrderStatusCancelled: true},
	OrderStatusShipped:   {},
	OrderStatusCancelled: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := validNextStatus[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return validNextStatus[s][next]
}

type Order struct {
	ID         int             `json:"id"`
	CustomerID int             `json:"customer_id"`
	Customer   *Customer       `json:"customer,omitempty"`
	Status     OrderStatus     `json:"status"`
	Items      []OrderItem     `json:"items"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OrderItem is immutable after creation; UnitPrice is the product's price
// snapshotted at checkout time, independent of later catalog changes.
type OrderItem struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}
