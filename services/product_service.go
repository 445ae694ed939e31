package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"storefront/models"
	"time"

	"github.com/redis/go-redis/v9"
)

type ProductStore interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*models.Category, error)
	CreateCategory(ctx context.Context, cat *models.Category) error
	UpdateCategory(ctx context.Context, cat *models.Category) error
	DeleteCategory(ctx context.Context, id int) error
	GetAllProducts(ctx context.Context, categoryID, page, limit int) ([]models.Product, int, error)
	GetProductByID(ctx context.Context, id int) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int) error
	GetComments(ctx context.Context, productID int) ([]models.Comment, error)
	CreateComment(ctx context.Context, c *models.Comment) error
}

type ProductService struct {
	store    ProductStore
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewProductService wires the catalog store with an optional Redis cache;
// cache may be nil, in which case every read goes to the store.
func NewProductService(store ProductStore, cache *redis.Client, cacheTTL time.Duration) *ProductService {
	return &ProductService{store: store, cache: cache, cacheTTL: cacheTTL}
}

func (s *ProductService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.GetAllCategories(ctx)
}

func (s *ProductService) GetCategoryByID(ctx context.Context, id int) (*models.Category, error) {
	return s.store.GetCategoryByID(ctx, id)
}

func (s *ProductService) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	cat := &models.Category{Title: req.Title, Description: req.Description}
	if err := s.store.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *ProductService) UpdateCategory(ctx context.Context, id int, req models.CategoryRequest) (*models.Category, error) {
	cat := &models.Category{ID: id, Title: req.Title, Description: req.Description}
	if err := s.store.UpdateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return s.store.GetCategoryByID(ctx, id)
}

func (s *ProductService) DeleteCategory(ctx context.Context, id int) error {
	return s.store.DeleteCategory(ctx, id)
}

func (s *ProductService) GetAllProducts(ctx context.Context, categoryID, page, limit int) (*models.PaginationResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	products, total, err := s.store.GetAllProducts(ctx, categoryID, page, limit)
	if err != nil {
		return nil, err
	}

	return &models.PaginationResponse{
		Success: true,
		Message: "Products retrieved successfully",
		Data:    products,
		Meta: models.MetaData{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

func (s *ProductService) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, productCacheKey(id)).Result(); err == nil {
			p := &models.Product{}
			if json.Unmarshal([]byte(cached), p) == nil {
				return p, nil
			}
		}
	}

	p, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(p); err == nil {
			s.cache.Set(ctx, productCacheKey(id), data, s.cacheTTL)
		}
	}
	return p, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	p := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		UnitPrice:   req.UnitPrice,
		Inventory:   req.Inventory,
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id int, req models.UpdateProductRequest) (*models.Product, error) {
	p, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.CategoryID != 0 {
		p.CategoryID = req.CategoryID
	}
	if req.UnitPrice != nil {
		p.UnitPrice = *req.UnitPrice
	}
	if req.Inventory != nil {
		p.Inventory = *req.Inventory
	}

	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *ProductService) GetComments(ctx context.Context, productID int) ([]models.Comment, error) {
	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.store.GetComments(ctx, productID)
}

func (s *ProductService) CreateComment(ctx context.Context, productID int, req models.CommentRequest) (*models.Comment, error) {
	c := &models.Comment{ProductID: productID, Name: req.Name, Body: req.Body}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ProductService) invalidate(ctx context.Context, id int) {
	if s.cache != nil {
		s.cache.Del(ctx, productCacheKey(id))
	}
}

func productCacheKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}
