package controllers

import (
	"net/http"
	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *services.AuthService
	userService services.UserStore
}

func NewAuthController(authService *services.AuthService, userService services.UserStore) *AuthController {
	return &AuthController{authService: authService, userService: userService}
}

// @Summary Register
// @Description Register a new customer account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.Response
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	result, err := ctrl.authService.Register(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Registration successful",
		Data:    result,
	})
}

// @Summary Login
// @Description Authenticate and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Credentials"
// @Success 200 {object} models.Response
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	result, err := ctrl.authService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data:    result,
	})
}

// @Summary Get profile
// @Description Get the authenticated customer's profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /auth/profile [get]
func (ctrl *AuthController) GetProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	customer, err := ctrl.userService.GetCustomerByUserID(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Profile retrieved",
		Data:    customer,
	})
}
