package repositories

import (
	"context"
	"errors"
	"storefront/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateFromCart converts a cart into an order inside a single transaction:
// lock the cart row, snapshot each product's current unit price into an
// order item, bulk-insert the items, then delete the cart. Any failure rolls
// the whole thing back; a second checkout of the same cart fails with
// ErrCartNotFound because the cart no longer exists.
//
// The FOR UPDATE lock on the cart row is taken before anything is read, so a
// concurrent upsert on the same cart blocks until commit and a concurrently
// deleted cart surfaces as ErrCartNotFound. A cart whose row survives but
// whose items were all removed surfaces as ErrEmptyCart.
func (r *OrderRepository) CreateFromCart(ctx context.Context, cartID uuid.UUID, customerID int) (*models.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, models.TranslateDBError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var lockedID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCartNotFound
	}
	if err != nil {
		return nil, models.TranslateDBError(err)
	}

	var customerExists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, customerID).Scan(&customerExists)
	if err != nil {
		return nil, models.TranslateDBError(err)
	}
	if !customerExists {
		return nil, models.ErrCustomerNotFound
	}

	rows, err := tx.Query(ctx,
		`SELECT ci.product_id, p.name, ci.quantity, p.unit_price
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, models.TranslateDBError(err)
	}

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			rows.Close()
			return nil, models.TranslateDBError(err)
		}
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, models.TranslateDBError(err)
	}

	if len(items) == 0 {
		return nil, models.ErrEmptyCart
	}

	order := &models.Order{CustomerID: customerID, Total: decimal.Zero}
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (customer_id, status) VALUES ($1, $2) RETURNING id, status, created_at`,
		customerID, models.OrderStatusPending,
	).Scan(&order.ID, &order.Status, &order.CreatedAt)
	if err != nil {
		return nil, models.TranslateDBError(err)
	}

	copyRows := make([][]interface{}, len(items))
	for i, item := range items {
		copyRows[i] = []interface{}{order.ID, item.ProductID, item.Quantity, item.UnitPrice}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "product_id", "quantity", "unit_price"},
		pgx.CopyFromRows(copyRows))
	if err != nil {
		return nil, models.TranslateDBError(err)
	}

	// explicit two-step delete: items first, then the cart row
	if _, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return nil, models.TranslateDBError(err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return nil, models.TranslateDBError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, models.TranslateDBError(err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		order.Total = order.Total.Add(items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
	}
	order.Items = items
	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID int) (*models.Order, error) {
	order := &models.Order{ID: orderID, Total: decimal.Zero}
	err := r.db.QueryRow(ctx,
		`SELECT customer_id, status, created_at FROM orders WHERE id = $1`, orderID,
	).Scan(&order.CustomerID, &order.Status, &order.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, models.TranslateDBError(err)
	}

	items, total, err := r.loadItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.Total = total
	return order, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID int) ([]models.OrderItem, decimal.Decimal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT oi.id, oi.product_id, p.name, oi.quantity, oi.unit_price
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1
		 ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, decimal.Zero, models.TranslateDBError(err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	total := decimal.Zero
	for rows.Next() {
		item := models.OrderItem{OrderID: orderID}
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, decimal.Zero, models.TranslateDBError(err)
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		items = append(items, item)
	}
	return items, total, models.TranslateDBError(rows.Err())
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID, page, limit int) ([]models.Order, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID).Scan(&total)
	if err != nil {
		return nil, 0, models.TranslateDBError(err)
	}

	offset := (page - 1) * limit
	rows, err := r.db.Query(ctx,
		`SELECT id, customer_id, status, created_at
		 FROM orders WHERE customer_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, customerID, limit, offset)
	if err != nil {
		return nil, 0, models.TranslateDBError(err)
	}
	defer rows.Close()

	orders, err := r.scanOrders(ctx, rows)
	return orders, total, err
}

func (r *OrderRepository) ListAll(ctx context.Context, status string, page, limit int) ([]models.Order, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)`, status).Scan(&total)
	if err != nil {
		return nil, 0, models.TranslateDBError(err)
	}

	offset := (page - 1) * limit
	rows, err := r.db.Query(ctx,
		`SELECT o.id, o.customer_id, o.status, o.created_at, c.full_name, u.email
		 FROM orders o
		 JOIN customers c ON c.id = o.customer_id
		 JOIN users u ON u.id = c.user_id
		 WHERE ($1 = '' OR o.status = $1)
		 ORDER BY o.created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, models.TranslateDBError(err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		customer := &models.Customer{}
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.CreatedAt, &customer.FullName, &customer.Email); err != nil {
			return nil, 0, models.TranslateDBError(err)
		}
		customer.ID = o.CustomerID
		o.Customer = customer
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, models.TranslateDBError(err)
	}

	for i := range orders {
		items, itemsTotal, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
		orders[i].Total = itemsTotal
	}
	return orders, total, nil
}

func (r *OrderRepository) scanOrders(ctx context.Context, rows pgx.Rows) ([]models.Order, error) {
	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.CreatedAt); err != nil {
			return nil, models.TranslateDBError(err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, models.TranslateDBError(err)
	}
	rows.Close()

	for i := range orders {
		items, total, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
		orders[i].Total = total
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int, status models.OrderStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return models.TranslateDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, orderID int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return models.TranslateDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}
