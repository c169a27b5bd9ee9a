package router

import (
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/handler"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/middleware"
)

// Setup sets up all routes
func Setup(
	h *server.Hertz,
	chatHandler *handler.ChatHandler,
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	healthHandler *handler.HealthHandler,
	apiKey string,
	logger *slog.Logger,
) {
	// Global middleware
	h.Use(middleware.Recovery())
	h.Use(middleware.Logger())
	h.Use(middleware.CORS())
	h.Use(middleware.APIKey(apiKey, logger))

	// Health check routes (no authentication required)
	h.GET("/ping", healthHandler.Ping)
	h.GET("/health", healthHandler.Readiness)
	h.GET("/health/ready", healthHandler.Readiness)
	h.GET("/health/live", healthHandler.Liveness)

	api := h.Group("/api")
	{
		// Chat proxy and synchronous extraction agents
		api.POST("/chat", chatHandler.Chat)
		api.POST("/parse-trip-context", chatHandler.ParseTripContext)
		api.POST("/extract-itinerary", chatHandler.ExtractItinerary)

		// Catalog. Search routes must register before /:id so "search" is
		// not taken for a product id.
		products := api.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/search", productHandler.Search)
			products.GET("/search/lexical", productHandler.SearchLexical)
			products.GET("/search/hybrid", productHandler.SearchHybrid)
			products.GET("/:id", productHandler.Get)
		}

		// Cart
		api.POST("/cart", cartHandler.Add)
		api.GET("/cart", cartHandler.Get)
		api.DELETE("/cart", cartHandler.Clear)
		api.DELETE("/cart/:product_id", cartHandler.Remove)
	}
}
