package controllers

import (
	"net/http"
	"storefront/models"
	"storefront/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService *services.ProductService
}

func NewProductController(productService *services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// @Summary Get all products
// @Description Get products with pagination, optionally filtered by category
// @Tags products
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param category_id query int false "Filter by category"
// @Success 200 {object} models.PaginationResponse
// @Router /products [get]
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	page, limit := getPaginationParams(c, 10)
	categoryID, _ := strconv.Atoi(c.DefaultQuery("category_id", "0"))

	result, err := ctrl.productService.GetAllProducts(c.Request.Context(), categoryID, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Get product
// @Description Get one product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /products/{id} [get]
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrProductNotFound)
		return
	}

	product, err := ctrl.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Product retrieved",
		Data:    product,
	})
}

// @Summary Create product
// @Description Create a product (Admin)
// @Tags Admin - Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.CreateProductRequest true "Product data"
// @Success 201 {object} models.Response
// @Router /admin/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Product created",
		Data:    product,
	})
}

// @Summary Update product
// @Description Update a product (Admin)
// @Tags Admin - Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param body body models.UpdateProductRequest true "Product data"
// @Success 200 {object} models.Response
// @Router /admin/products/{id} [patch]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrProductNotFound)
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Product updated",
		Data:    product,
	})
}

// @Summary Delete product
// @Description Delete a product (Admin)
// @Tags Admin - Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /admin/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrProductNotFound)
		return
	}

	if err := ctrl.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Product deleted",
	})
}

// @Summary Get product comments
// @Description Get comments for a product
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /products/{id}/comments [get]
func (ctrl *ProductController) GetComments(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrProductNotFound)
		return
	}

	comments, err := ctrl.productService.GetComments(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Comments retrieved",
		Data:    comments,
	})
}

// @Summary Create product comment
// @Description Add a comment to a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param body body models.CommentRequest true "Comment data"
// @Success 201 {object} models.Response
// @Router /products/{id}/comments [post]
func (ctrl *ProductController) CreateComment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrProductNotFound)
		return
	}

	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	comment, err := ctrl.productService.CreateComment(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Comment created",
		Data:    comment,
	})
}
