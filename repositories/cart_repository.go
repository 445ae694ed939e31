package repositories

import (
	"context"
	"errors"
	"storefront/models"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type CartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) CreateCart(ctx context.Context) (*models.Cart, error) {
	cart := &models.Cart{Items: []models.CartItem{}, TotalPrice: decimal.Zero}
	err := r.db.QueryRow(ctx,
		`INSERT INTO carts DEFAULT VALUES RETURNING id, created_at`,
	).Scan(&cart.ID, &cart.CreatedAt)
	if err != nil {
		return nil, models.TranslateDBError(err)
	}
	return cart, nil
}

func (r *CartRepository) GetCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart := &models.Cart{ID: cartID, Items: []models.CartItem{}, TotalPrice: decimal.Zero}
	err := r.db.QueryRow(ctx,
		`SELECT created_at FROM carts WHERE id = $1`, cartID,
	).Scan(&cart.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCartNotFound
	}
	if err != nil {
		return nil, models.TranslateDBError(err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT ci.id, ci.product_id, p.name, p.unit_price, ci.quantity
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, models.TranslateDBError(err)
	}
	defer rows.Close()

	for rows.Next() {
		item := models.CartItem{CartID: cartID}
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, models.TranslateDBError(err)
		}
		item.ItemTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		cart.TotalPrice = cart.TotalPrice.Add(item.ItemTotal)
		cart.Items = append(cart.Items, item)
	}
	return cart, models.TranslateDBError(rows.Err())
}

func (r *CartRepository) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return models.TranslateDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCartNotFound
	}
	return nil
}

// AddOrIncrementItem adds quantity to the (cart, product) line, creating it
// if absent. The lookup-then-write can race with a concurrent request for
// the same pair; the UNIQUE(cart_id, product_id) constraint turns the losing
// insert into a duplicate-key failure, which is retried as an increment.
func (r *CartRepository) AddOrIncrementItem(ctx context.Context, cartID uuid.UUID, productID, quantity int) (*models.CartItem, error) {
	var itemID int
	err := r.db.QueryRow(ctx,
		`SELECT id FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID,
	).Scan(&itemID)

	switch {
	case err == nil:
		if err := r.incrementItem(ctx, cartID, productID, quantity); err != nil {
			return nil, err
		}
	case errors.Is(err, pgx.ErrNoRows):
		_, err := r.db.Exec(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)`,
			cartID, productID, quantity)
		if err != nil {
			translated := models.TranslateDBError(err)
			if errors.Is(translated, models.ErrDuplicateKey) {
				// lost the insert race, fall back to an increment
				if err := r.incrementItem(ctx, cartID, productID, quantity); err != nil {
					return nil, err
				}
			} else if nf := foreignKeyNotFound(err); nf != nil {
				return nil, nf
			} else {
				return nil, translated
			}
		}
	default:
		return nil, models.TranslateDBError(err)
	}

	return r.getItemByProduct(ctx, cartID, productID)
}

func (r *CartRepository) incrementItem(ctx context.Context, cartID uuid.UUID, productID, quantity int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE cart_items SET quantity = quantity + $3 WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID, quantity)
	return models.TranslateDBError(err)
}

func (r *CartRepository) getItemByProduct(ctx context.Context, cartID uuid.UUID, productID int) (*models.CartItem, error) {
	item := &models.CartItem{CartID: cartID}
	err := r.db.QueryRow(ctx,
		`SELECT ci.id, ci.product_id, p.name, p.unit_price, ci.quantity
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1 AND ci.product_id = $2`,
		cartID, productID,
	).Scan(&item.ID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCartNotFound
	}
	if err != nil {
		return nil, models.TranslateDBError(err)
	}
	item.ItemTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	return item, nil
}

func (r *CartRepository) SetItemQuantity(ctx context.Context, cartID uuid.UUID, itemID, quantity int) (*models.CartItem, error) {
	var productID int
	err := r.db.QueryRow(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE id = $1 AND cart_id = $2 RETURNING product_id`,
		itemID, cartID, quantity,
	).Scan(&productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCartNotFound
	}
	if err != nil {
		return nil, models.TranslateDBError(err)
	}
	return r.getItemByProduct(ctx, cartID, productID)
}

func (r *CartRepository) RemoveItem(ctx context.Context, cartID uuid.UUID, itemID int) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return models.TranslateDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCartNotFound
	}
	return nil
}

// foreignKeyNotFound turns a cart_items FK violation into the matching
// not-found sentinel, or nil if err is not an FK violation.
func foreignKeyNotFound(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23503" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "product") {
		return models.ErrProductNotFound
	}
	return models.ErrCartNotFound
}
