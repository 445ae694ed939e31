package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	NumProducts int    `json:"num_products"`
}

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	CategoryID  int             `json:"category_id"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Inventory   int             `json:"inventory"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Comment struct {
	ID        int       `json:"id"`
	ProductID int       `json:"product_id"`
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
