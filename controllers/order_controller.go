package controllers

import (
	"math"
	"net/http"
	"storefront/models"
	"storefront/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// @Summary Create order
// @Description Convert a cart into an order for the authenticated customer
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.CreateOrderRequest true "Cart to check out"
// @Success 201 {object} models.Response
// @Router /orders [post]
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	order, err := ctrl.orderService.Checkout(c.Request.Context(), req.CartID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Order created successfully",
		Data:    order,
	})
}

// @Summary Get own orders
// @Description Get the authenticated customer's orders with pagination
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.PaginationResponse
// @Router /orders [get]
func (ctrl *OrderController) GetOwnOrders(c *gin.Context) {
	userID := c.GetInt("user_id")
	page, limit := getPaginationParams(c, 10)

	orders, total, err := ctrl.orderService.ListOwnOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: "Orders retrieved",
		Data:    orders,
		Meta: models.MetaData{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// @Summary Get own order
// @Description Get one of the authenticated customer's orders
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response
// @Router /orders/{id} [get]
func (ctrl *OrderController) GetOwnOrderByID(c *gin.Context) {
	userID := c.GetInt("user_id")

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrOrderNotFound)
		return
	}

	order, err := ctrl.orderService.GetOwnOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order retrieved",
		Data:    order,
	})
}

// @Summary Get all orders
// @Description Get all orders with pagination (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Success 200 {object} models.PaginationResponse
// @Router /admin/orders [get]
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	page, limit := getPaginationParams(c, 10)
	status := c.Query("status")

	orders, total, err := ctrl.orderService.ListAllOrders(c.Request.Context(), status, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: "Orders retrieved",
		Data:    orders,
		Meta: models.MetaData{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// @Summary Update order status
// @Description Transition an order's status (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param body body models.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} models.Response
// @Router /admin/orders/{id}/status [patch]
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrOrderNotFound)
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	order, err := ctrl.orderService.UpdateStatus(c.Request.Context(), orderID, models.OrderStatus(req.Status))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order status updated",
		Data:    order,
	})
}

// @Summary Delete order
// @Description Delete an order (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response
// @Router /admin/orders/{id} [delete]
func (ctrl *OrderController) DeleteOrder(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrOrderNotFound)
		return
	}

	if err := ctrl.orderService.DeleteOrder(c.Request.Context(), orderID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order deleted",
	})
}
