package controllers

import (
	"net/http"
	"storefront/models"
	"storefront/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService *services.CartService
}

func NewCartController(cartService *services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// @Summary Create cart
// @Description Create a new empty cart and return its token
// @Tags carts
// @Security BearerAuth
// @Produce json
// @Success 201 {object} models.Response
// @Router /carts [post]
func (ctrl *CartController) CreateCart(c *gin.Context) {
	cart, err := ctrl.cartService.CreateCart(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Cart created",
		Data:    cart,
	})
}

// @Summary Get cart
// @Description Get a cart with its items and totals
// @Tags carts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Cart ID (UUID)"
// @Success 200 {object} models.Response
// @Router /carts/{id} [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, err := ctrl.cartService.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Cart retrieved",
		Data:    cart,
	})
}

// @Summary Delete cart
// @Description Delete a cart and all its items
// @Tags carts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Cart ID (UUID)"
// @Success 200 {object} models.Response
// @Router /carts/{id} [delete]
func (ctrl *CartController) DeleteCart(c *gin.Context) {
	if err := ctrl.cartService.DeleteCart(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Cart deleted",
	})
}

// @Summary Add item to cart
// @Description Add a product to the cart; adding the same product again increments its quantity
// @Tags carts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart ID (UUID)"
// @Param body body models.AddCartItemRequest true "Item data"
// @Success 201 {object} models.Response
// @Router /carts/{id}/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	item, err := ctrl.cartService.AddItem(c.Request.Context(), c.Param("id"), req.ProductID, req.Quantity)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Item added to cart",
		Data:    item,
	})
}

// @Summary Update cart item
// @Description Set a cart item's quantity
// @Tags carts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart ID (UUID)"
// @Param itemID path int true "Cart item ID"
// @Param body body models.UpdateCartItemRequest true "Quantity"
// @Success 200 {object} models.Response
// @Router /carts/{id}/items/{itemID} [patch]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		abortWithError(c, models.ErrCartNotFound)
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	item, err := ctrl.cartService.SetItemQuantity(c.Request.Context(), c.Param("id"), itemID, req.Quantity)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Item updated",
		Data:    item,
	})
}

// @Summary Remove cart item
// @Description Remove one item from the cart
// @Tags carts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Cart ID (UUID)"
// @Param itemID path int true "Cart item ID"
// @Success 200 {object} models.Response
// @Router /carts/{id}/items/{itemID} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		abortWithError(c, models.ErrCartNotFound)
		return
	}

	if err := ctrl.cartService.RemoveItem(c.Request.Context(), c.Param("id"), itemID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Item removed",
	})
}
