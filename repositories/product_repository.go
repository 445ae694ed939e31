package repositories

import (
	"context"
	"errors"
	"storefront/models"
	"storefront/utils"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.title, c.description, COUNT(p.id)
		 FROM categories c
		 LEFT JOIN products p ON p.category_id = c.id
		 GROUP BY c.id
		 ORDER BY c.title`)
	if err != nil {
		return nil, models.TranslateDBError(err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Title, &cat.Description, &cat.NumProducts); err != nil {
			return nil, models.TranslateDBError(err)
		}
		categories = append(categories, cat)
	}
	return categories, models.TranslateDBError(rows.Err())
}

func (r *ProductRepository) GetCategoryByID(ctx context.Context, id int) (*models.Category, error) {
	cat := &models.Category{}
	err := r.db.QueryRow(ctx,
		`SELECT c.id, c.title, c.description,
		        (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
		 FROM categories c WHERE c.id = $1`, id,
	).Scan(&cat.ID, &cat.Title, &cat.Description, &cat.NumProducts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCategoryNotFound
	}
	if err != nil {
		return nil, models.TranslateDBError(err)
	}
	return cat, nil
}

func (r *ProductRepository) CreateCategory(ctx context.Context, cat *models.Category) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (title, description) VALUES ($1, $2) RETURNING id`,
		cat.Title, cat.Description,
	).Scan(&cat.ID)
	return models.TranslateDBError(err)
}

func (r *ProductRepository) UpdateCategory(ctx context.Context, cat *models.Category) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE categories SET title = $2, description = $3 WHERE id = $1`,
		cat.ID, cat.Title, cat.Description)
	if err != nil {
		return models.TranslateDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCategoryNotFound
	}
	return nil
}

func (r *ProductRepository) DeleteCategory(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return models.TranslateDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCategoryNotFound
	}
	return nil
}

func (r *ProductRepository) GetAllProducts(ctx context.Context, categoryID, page, limit int) ([]models.Product, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE ($1 = 0 OR category_id = $1)`, categoryID).Scan(&total)
	if err != nil {
		return nil, 0, models.TranslateDBError(err)
	}

	offset := (page - 1) * limit
	rows, err := r.db.Query(ctx,
		`SELECT id, name, slug, description, category_id, unit_price, inventory, created_at, updated_at
		 FROM products
		 WHERE ($1 = 0 OR category_id = $1)
		 ORDER BY id LIMIT $2 OFFSET $3`, categoryID, limit, offset)
	if err != nil {
		return nil, 0, models.TranslateDBError(err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.CategoryID,
			&p.UnitPrice, &p.Inventory, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, models.TranslateDBError(err)
		}
		products = append(products, p)
	}
	return products, total, models.TranslateDBError(rows.Err())
}

func (r *ProductRepository) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	p := &models.Product{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, slug, description, category_id, unit_price, inventory, created_at, updated_at
		 FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.CategoryID,
		&p.UnitPrice, &p.Inventory, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, models.TranslateDBError(err)
	}
	return p, nil
}

func (r *ProductRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	p.Slug = utils.Slugify(p.Name)
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO products (name, slug, description, category_id, unit_price, inventory, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Slug, p.Description, p.CategoryID, p.UnitPrice, p.Inventory, now,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return models.TranslateDBError(err)
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, p *models.Product) error {
	p.Slug = utils.Slugify(p.Name)
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET name = $2, slug = $3, description = $4, category_id = $5,
		        unit_price = $6, inventory = $7, updated_at = NOW()
		 WHERE id = $1`,
		p.ID, p.Name, p.Slug, p.Description, p.CategoryID, p.UnitPrice, p.Inventory)
	if err != nil {
		return models.TranslateDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return models.TranslateDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) GetComments(ctx context.Context, productID int) ([]models.Comment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, product_id, name, body, created_at
		 FROM comments WHERE product_id = $1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, models.TranslateDBError(err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ProductID, &c.Name, &c.Body, &c.CreatedAt); err != nil {
			return nil, models.TranslateDBError(err)
		}
		comments = append(comments, c)
	}
	return comments, models.TranslateDBError(rows.Err())
}

func (r *ProductRepository) CreateComment(ctx context.Context, c *models.Comment) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO comments (product_id, name, body) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		c.ProductID, c.Name, c.Body,
	).Scan(&c.ID, &c.CreatedAt)
	if fk := foreignKeyNotFound(err); fk != nil {
		return models.ErrProductNotFound
	}
	return models.TranslateDBError(err)
}
