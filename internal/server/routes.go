package server

import (
	"github.com/labstack/echo/v4"

	"github.com/ahsan757/trader/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	projectHandler *handlers.ProjectHandler,
	itemHandler *handlers.ItemHandler,
	paymentHandler *handlers.PaymentHandler,
	statsHandler *handlers.StatsHandler,
	notificationHandler *handlers.NotificationHandler,
	apiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1", apiRateLimiter)

	projects := api.Group("/projects")
	projects.GET("", projectHandler.List)
	projects.POST("", projectHandler.Create)
	projects.GET("/:id", projectHandler.Get)
	projects.DELETE("/:id", projectHandler.Delete)
	projects.GET("/:id/statement", projectHandler.Statement)
	projects.GET("/:id/statement/csv", projectHandler.StatementCSV)
	projects.GET("/:id/events", notificationHandler.Stream)

	projects.POST("/:id/sections/:section/items", itemHandler.Create)
	projects.PUT("/:id/sections/:section/items/:itemId", itemHandler.Update)
	projects.DELETE("/:id/sections/:section/items/:itemId", itemHandler.Delete)

	projects.POST("/:id/sections/:section/payments", paymentHandler.Create)
	projects.DELETE("/:id/sections/:section/payments/:paymentId", paymentHandler.Delete)

	stats := api.Group("/stats")
	stats.GET("/overview", statsHandler.Overview)
}
