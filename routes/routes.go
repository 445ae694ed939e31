package routes

import (
	"storefront/config"
	"storefront/controllers"
	"storefront/middleware"
	"storefront/repositories"
	"storefront/services"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func SetupRoutes(router *gin.Engine) {
	cartRepo := repositories.NewCartRepository(config.DB)
	orderRepo := repositories.NewOrderRepository(config.DB)
	productRepo := repositories.NewProductRepository(config.DB)
	userRepo := repositories.NewUserRepository(config.DB)

	cacheTTL := time.Duration(config.AppConfig.ProductCacheTTL) * time.Second

	authService := services.NewAuthService(userRepo)
	cartService := services.NewCartService(cartRepo)
	orderService := services.NewOrderService(orderRepo, userRepo)
	productService := services.NewProductService(productRepo, config.RedisClient, cacheTTL)

	authCtrl := controllers.NewAuthController(authService, userRepo)
	categoryCtrl := controllers.NewCategoryController(productService)
	productCtrl := controllers.NewProductController(productService)
	cartCtrl := controllers.NewCartController(cartService)
	orderCtrl := controllers.NewOrderController(orderService)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	router.POST("/auth/register", authCtrl.Register)
	router.POST("/auth/login", authCtrl.Login)

	router.GET("/categories", categoryCtrl.GetCategories)
	router.GET("/categories/:id", categoryCtrl.GetCategoryByID)
	router.GET("/products", productCtrl.GetProducts)
	router.GET("/products/:id", productCtrl.GetProductByID)
	router.GET("/products/:id/comments", productCtrl.GetComments)
	router.POST("/products/:id/comments", productCtrl.CreateComment)

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/auth/profile", authCtrl.GetProfile)

		auth.POST("/carts", cartCtrl.CreateCart)
		auth.GET("/carts/:id", cartCtrl.GetCart)
		auth.DELETE("/carts/:id", cartCtrl.DeleteCart)
		auth.POST("/carts/:id/items", cartCtrl.AddItem)
		auth.PATCH("/carts/:id/items/:itemID", cartCtrl.UpdateItem)
		auth.DELETE("/carts/:id/items/:itemID", cartCtrl.RemoveItem)

		auth.POST("/orders", orderCtrl.CreateOrder)
		auth.GET("/orders", orderCtrl.GetOwnOrders)
		auth.GET("/orders/:id", orderCtrl.GetOwnOrderByID)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/categories", categoryCtrl.CreateCategory)
		admin.PATCH("/categories/:id", categoryCtrl.UpdateCategory)
		admin.DELETE("/categories/:id", categoryCtrl.DeleteCategory)

		admin.POST("/products", productCtrl.CreateProduct)
		admin.PATCH("/products/:id", productCtrl.UpdateProduct)
		admin.DELETE("/products/:id", productCtrl.DeleteProduct)

		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.PATCH("/orders/:id/status", orderCtrl.UpdateOrderStatus)
		admin.DELETE("/orders/:id", orderCtrl.DeleteOrder)
	}
}
