package repositories

import (
	"context"
	"errors"
	"storefront/models"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithCustomer inserts the user and its customer row in one
// transaction, so a half-registered account (user without customer)
// cannot be left behind.
func (r *UserRepository) CreateWithCustomer(ctx context.Context, user *models.User, customer *models.Customer) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.TranslateDBError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, password, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING id, created_at, updated_at`,
		user.Email, user.Password, user.Role, now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.TranslateDBError(err)
	}

	customer.UserID = user.ID
	err = tx.QueryRow(ctx,
		`INSERT INTO customers (user_id, full_name, birth_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING id, created_at, updated_at`,
		customer.UserID, customer.FullName, customer.BirthDate, now,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return models.TranslateDBError(err)
	}

	return models.TranslateDBError(tx.Commit(ctx))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password, role, created_at, updated_at FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, models.TranslateDBError(err)
	}
	return user, nil
}

func (r *UserRepository) GetCustomerByUserID(ctx context.Context, userID int) (*models.Customer, error) {
	customer := &models.Customer{}
	err := r.db.QueryRow(ctx,
		`SELECT c.id, c.user_id, c.full_name, u.email, c.birth_date, c.created_at, c.updated_at
		 FROM customers c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.user_id = $1`, userID,
	).Scan(&customer.ID, &customer.UserID, &customer.FullName, &customer.Email,
		&customer.BirthDate, &customer.CreatedAt, &customer.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCustomerNotFound
	}
	if err != nil {
		return nil, models.TranslateDBError(err)
	}
	return customer, nil
}

func (r *UserRepository) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE customers SET full_name = $2, birth_date = $3, updated_at = NOW()
		 WHERE user_id = $1`,
		customer.UserID, customer.FullName, customer.BirthDate)
	if err != nil {
		return models.TranslateDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCustomerNotFound
	}
	return nil
}
