package routes

import (
	"github.com/gin-gonic/gin"

	"example.com/backstage/services/catalog/api/handlers"
	"example.com/backstage/services/catalog/internal/service"
)

// SetupRoutes sets up all the routes for the server
func SetupRoutes(r *gin.Engine, svc service.Service) {
	// Health check
	r.GET("/health", handlers.HealthCheck)

	// API routes
	api := r.Group("/api/v1")

	// Product routes
	productHandler := handlers.NewProductHandler(svc)
	products := api.Group("/products")
	{
		products.POST("", productHandler.CreateProduct)
		products.GET("", productHandler.ListProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.PUT("/:id", productHandler.UpdateProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)
	}

	// Category routes
	categoryHandler := handlers.NewCategoryHandler(svc)
	categories := api.Group("/categories")
	{
		categories.POST("", categoryHandler.CreateCategory)
		categories.GET("", categoryHandler.ListCategories)
		categories.GET("/:id", categoryHandler.GetCategory)
		categories.PUT("/:id", categoryHandler.UpdateCategory)
		categories.DELETE("/:id", categoryHandler.DeleteCategory)
	}

	// Event history routes
	eventHandler := handlers.NewEventHandler(svc)
	events := api.Group("/events")
	{
		events.GET("/:id", eventHandler.GetHistory)
	}
}
