package controllers

import (
	"net/http"
	"storefront/models"
	"storefront/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	productService *services.ProductService
}

func NewCategoryController(productService *services.ProductService) *CategoryController {
	return &CategoryController{productService: productService}
}

// @Summary Get all categories
// @Description Get all categories with product counts
// @Tags categories
// @Produce json
// @Success 200 {object} models.Response
// @Router /categories [get]
func (ctrl *CategoryController) GetCategories(c *gin.Context) {
	categories, err := ctrl.productService.GetAllCategories(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Categories retrieved",
		Data:    categories,
	})
}

// @Summary Get category
// @Description Get one category by id
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Response
// @Router /categories/{id} [get]
func (ctrl *CategoryController) GetCategoryByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrCategoryNotFound)
		return
	}

	category, err := ctrl.productService.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Category retrieved",
		Data:    category,
	})
}

// @Summary Create category
// @Description Create a category (Admin)
// @Tags Admin - Categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.CategoryRequest true "Category data"
// @Success 201 {object} models.Response
// @Router /admin/categories [post]
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	category, err := ctrl.productService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Category created",
		Data:    category,
	})
}

// @Summary Update category
// @Description Update a category (Admin)
// @Tags Admin - Categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param body body models.CategoryRequest true "Category data"
// @Success 200 {object} models.Response
// @Router /admin/categories/{id} [patch]
func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrCategoryNotFound)
		return
	}

	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	category, err := ctrl.productService.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Category updated",
		Data:    category,
	})
}

// @Summary Delete category
// @Description Delete a category (Admin)
// @Tags Admin - Categories
// @Security BearerAuth
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Response
// @Router /admin/categories/{id} [delete]
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrCategoryNotFound)
		return
	}

	if err := ctrl.productService.DeleteCategory(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Category deleted",
	})
}
