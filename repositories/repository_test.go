package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"storefront/models"
	"sync"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var migrateOnce sync.Once

// testPool connects to the database named by TEST_DATABASE_URL and applies
// migrations; tests are skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}

	migrateOnce.Do(func() {
		sqlDB, err := sql.Open("pgx", dsn)
		if err != nil {
			t.Fatalf("open migration connection: %v", err)
		}
		defer sqlDB.Close()

		driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
		if err != nil {
			t.Fatalf("migration driver: %v", err)
		}
		m, err := migrate.NewWithDatabaseInstance("file://../database/migration", "postgres", driver)
		if err != nil {
			t.Fatalf("migrator: %v", err)
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			t.Fatalf("apply migrations: %v", err)
		}
	})

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, price string) int {
	t.Helper()
	ctx := context.Background()

	var categoryID int
	err := pool.QueryRow(ctx,
		`INSERT INTO categories (title) VALUES ('test category') RETURNING id`).Scan(&categoryID)
	require.NoError(t, err)

	var productID int
	err = pool.QueryRow(ctx,
		`INSERT INTO products (name, slug, category_id, unit_price)
		 VALUES ('test product', 'test-product', $1, $2) RETURNING id`,
		categoryID, price).Scan(&productID)
	require.NoError(t, err)
	return productID
}

func seedCustomer(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()
	ctx := context.Background()

	var userID int
	err := pool.QueryRow(ctx,
		`INSERT INTO users (email, password) VALUES ($1, 'x') RETURNING id`,
		fmt.Sprintf("%s@example.com", uuid.NewString())).Scan(&userID)
	require.NoError(t, err)

	var customerID int
	err = pool.QueryRow(ctx,
		`INSERT INTO customers (user_id, full_name) VALUES ($1, 'Test Customer') RETURNING id`,
		userID).Scan(&customerID)
	require.NoError(t, err)
	return customerID
}

func setProductPrice(t *testing.T, pool *pgxpool.Pool, productID int, price string) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`UPDATE products SET unit_price = $2 WHERE id = $1`, productID, price)
	require.NoError(t, err)
}

func TestAddOrIncrementItemUpsert(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	repo := NewCartRepository(pool)

	productID := seedProduct(t, pool, "10.00")
	cart, err := repo.CreateCart(ctx)
	require.NoError(t, err)

	for _, qty := range []int{2, 3, 5} {
		_, err := repo.AddOrIncrementItem(ctx, cart.ID, productID, qty)
		require.NoError(t, err)
	}

	var rowCount, quantity int
	err = pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM cart_items
		 WHERE cart_id = $1 AND product_id = $2`, cart.ID, productID).Scan(&rowCount, &quantity)
	require.NoError(t, err)
	assert.Equal(t, 1, rowCount, "exactly one row per (cart, product) pair")
	assert.Equal(t, 10, quantity, "final quantity equals the sum of added quantities")
}

func TestAddOrIncrementItemConcurrent(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	repo := NewCartRepository(pool)

	productID := seedProduct(t, pool, "10.00")
	cart, err := repo.CreateCart(ctx)
	require.NoError(t, err)

	const n = 20
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := repo.AddOrIncrementItem(gctx, cart.ID, productID, 1)
			return err
		})
	}
	require.NoError(t, g.Wait())

	item, err := repo.AddOrIncrementItem(ctx, cart.ID, productID, 1)
	require.NoError(t, err)
	assert.Equal(t, n+1, item.Quantity)

	var rowCount int
	err = pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cart.ID, productID).Scan(&rowCount)
	require.NoError(t, err)
	assert.Equal(t, 1, rowCount)
}

func TestAddOrIncrementItemMissingReferences(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	repo := NewCartRepository(pool)

	productID := seedProduct(t, pool, "10.00")

	_, err := repo.AddOrIncrementItem(ctx, uuid.New(), productID, 1)
	assert.ErrorIs(t, err, models.ErrCartNotFound)

	cart, err := repo.CreateCart(ctx)
	require.NoError(t, err)
	_, err = repo.AddOrIncrementItem(ctx, cart.ID, -1, 1)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestCreateFromCartCheckout(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	cartRepo := NewCartRepository(pool)
	orderRepo := NewOrderRepository(pool)

	productA := seedProduct(t, pool, "10.00")
	productB := seedProduct(t, pool, "5.00")
	customerID := seedCustomer(t, pool)

	cart, err := cartRepo.CreateCart(ctx)
	require.NoError(t, err)
	_, err = cartRepo.AddOrIncrementItem(ctx, cart.ID, productA, 2)
	require.NoError(t, err)
	_, err = cartRepo.AddOrIncrementItem(ctx, cart.ID, productB, 1)
	require.NoError(t, err)

	order, err := orderRepo.CreateFromCart(ctx, cart.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, order.Items[1].UnitPrice.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("25.00")))

	// the source cart is hard-deleted
	_, err = cartRepo.GetCart(ctx, cart.ID)
	assert.ErrorIs(t, err, models.ErrCartNotFound)

	// a retried checkout cannot create a second order
	_, err = orderRepo.CreateFromCart(ctx, cart.ID, customerID)
	assert.ErrorIs(t, err, models.ErrCartNotFound)

	// the snapshot survives later catalog price changes
	setProductPrice(t, pool, productA, "99.99")
	reloaded, err := orderRepo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")),
		"order item price must not follow the catalog")
}

func TestCreateFromCartSnapshotsPriceAtCheckout(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	cartRepo := NewCartRepository(pool)
	orderRepo := NewOrderRepository(pool)

	productID := seedProduct(t, pool, "10.00")
	customerID := seedCustomer(t, pool)

	cart, err := cartRepo.CreateCart(ctx)
	require.NoError(t, err)
	_, err = cartRepo.AddOrIncrementItem(ctx, cart.ID, productID, 1)
	require.NoError(t, err)

	// the price changed between add-to-cart and checkout; the order must
	// carry the price current at checkout time
	setProductPrice(t, pool, productID, "12.50")

	order, err := orderRepo.CreateFromCart(ctx, cart.ID, customerID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.50")))
}

func TestCreateFromCartEmptyCart(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	cartRepo := NewCartRepository(pool)
	orderRepo := NewOrderRepository(pool)

	customerID := seedCustomer(t, pool)
	cart, err := cartRepo.CreateCart(ctx)
	require.NoError(t, err)

	_, err = orderRepo.CreateFromCart(ctx, cart.ID, customerID)
	assert.ErrorIs(t, err, models.ErrEmptyCart)

	var orderCount int
	err = pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID).Scan(&orderCount)
	require.NoError(t, err)
	assert.Equal(t, 0, orderCount, "empty-cart checkout must create no order")

	// the cart itself is untouched
	_, err = cartRepo.GetCart(ctx, cart.ID)
	assert.NoError(t, err)
}

func TestCreateFromCartUnknownCart(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	orderRepo := NewOrderRepository(pool)

	customerID := seedCustomer(t, pool)
	_, err := orderRepo.CreateFromCart(ctx, uuid.New(), customerID)
	assert.ErrorIs(t, err, models.ErrCartNotFound)
}

func TestCreateFromCartRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	cartRepo := NewCartRepository(pool)
	orderRepo := NewOrderRepository(pool)

	productID := seedProduct(t, pool, "10.00")
	cart, err := cartRepo.CreateCart(ctx)
	require.NoError(t, err)
	_, err = cartRepo.AddOrIncrementItem(ctx, cart.ID, productID, 3)
	require.NoError(t, err)

	// failure inside the transaction: the customer does not exist
	_, err = orderRepo.CreateFromCart(ctx, cart.ID, -1)
	assert.ErrorIs(t, err, models.ErrCustomerNotFound)

	// the cart and its items are exactly as before the attempt
	got, err := cartRepo.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
}

// failInsertsOn installs a trigger that rejects every insert into table,
// removed again when the test finishes.
func failInsertsOn(t *testing.T, pool *pgxpool.Pool, table string) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, fmt.Sprintf(
		`CREATE FUNCTION reject_%s_insert() RETURNS trigger AS $$
		 BEGIN RAISE EXCEPTION 'insert rejected'; END;
		 $$ LANGUAGE plpgsql`, table))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, fmt.Sprintf(
		`CREATE TRIGGER reject_%s_insert BEFORE INSERT ON %s
		 FOR EACH ROW EXECUTE FUNCTION reject_%s_insert()`, table, table, table))
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		pool.Exec(ctx, fmt.Sprintf(`DROP TRIGGER IF EXISTS reject_%s_insert ON %s`, table, table))
		pool.Exec(ctx, fmt.Sprintf(`DROP FUNCTION IF EXISTS reject_%s_insert()`, table))
	})
}

func TestCreateFromCartRollsBackAfterOrderCreated(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	cartRepo := NewCartRepository(pool)
	orderRepo := NewOrderRepository(pool)

	productID := seedProduct(t, pool, "10.00")
	customerID := seedCustomer(t, pool)
	cart, err := cartRepo.CreateCart(ctx)
	require.NoError(t, err)
	_, err = cartRepo.AddOrIncrementItem(ctx, cart.ID, productID, 3)
	require.NoError(t, err)

	// the order row is inserted, then the item insert blows up
	failInsertsOn(t, pool, "order_items")

	_, err = orderRepo.CreateFromCart(ctx, cart.ID, customerID)
	require.Error(t, err)

	var orderCount int
	err = pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID).Scan(&orderCount)
	require.NoError(t, err)
	assert.Equal(t, 0, orderCount, "the order insert must roll back with the failed items")

	got, err := cartRepo.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
}

func TestCreateWithCustomerIsAtomic(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	repo := NewUserRepository(pool)

	failInsertsOn(t, pool, "customers")

	user := &models.User{
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()),
		Password: "x",
		Role:     "customer",
	}
	err := repo.CreateWithCustomer(ctx, user, &models.Customer{FullName: "Test Customer"})
	require.Error(t, err)

	var userCount int
	err = pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE email = $1`, user.Email).Scan(&userCount)
	require.NoError(t, err)
	assert.Equal(t, 0, userCount, "a failed registration must not leave a user row")
}

func TestOrderStatusUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	cartRepo := NewCartRepository(pool)
	orderRepo := NewOrderRepository(pool)

	productID := seedProduct(t, pool, "10.00")
	customerID := seedCustomer(t, pool)
	cart, err := cartRepo.CreateCart(ctx)
	require.NoError(t, err)
	_, err = cartRepo.AddOrIncrementItem(ctx, cart.ID, productID, 1)
	require.NoError(t, err)

	order, err := orderRepo.CreateFromCart(ctx, cart.ID, customerID)
	require.NoError(t, err)

	require.NoError(t, orderRepo.UpdateStatus(ctx, order.ID, models.OrderStatusShipped))
	reloaded, err := orderRepo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, reloaded.Status)

	require.NoError(t, orderRepo.Delete(ctx, order.ID))
	_, err = orderRepo.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	assert.ErrorIs(t, orderRepo.UpdateStatus(ctx, -1, models.OrderStatusShipped), models.ErrOrderNotFound)
}
