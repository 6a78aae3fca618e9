package client

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendify/internal/middleware"
	"attendify/internal/rbac"
)

func RegisterRoutes(
	r *gin.Engine,
	handler *Handler,
	visitHandler *VisitHandler,
	rbacService rbac.Service,
	logger *zap.Logger,
) {
	clients := r.Group("/clients")
	clients.Use(middleware.AuthMiddleware())
	clients.Use(middleware.ContextLogger(logger))
	{
		clients.GET("/",
			middleware.RateLimitByUser(10, 20),
			middleware.RBACAuthorize(rbacService, "client", "read"),
			handler.GetAll,
		)

		clients.GET("/:id/",
			middleware.RateLimitByUser(10, 20),
			middleware.RBACAuthorize(rbacService, "client", "read"),
			handler.GetById,
		)

		// Devices register newly recognized visitors themselves.
		clients.POST("/",
			middleware.RateLimitByUser(30, 60),
			middleware.RBACAuthorize(rbacService, "client", "create"),
			handler.Create,
		)

		clients.PUT("/:id/",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, "client", "update"),
			handler.Update,
		)

		clients.DELETE("/:id/",
			middleware.RateLimitByUser(0.5, 1),
			middleware.RBACAuthorize(rbacService, "client", "delete"),
			handler.Delete,
		)

		clients.POST("/visit-history/",
			middleware.RateLimitByUser(30, 60),
			middleware.RBACAuthorize(rbacService, "client_visit", "create"),
			visitHandler.Create,
		)

		clients.GET("/visit-history/",
			middleware.RateLimitByUser(10, 20),
			middleware.RBACAuthorize(rbacService, "client_visit", "read"),
			visitHandler.GetAll,
		)

		clients.GET("/visit-history/:id/",
			middleware.RateLimitByUser(10, 20),
			middleware.RBACAuthorize(rbacService, "client_visit", "read"),
			visitHandler.GetById,
		)

		clients.PUT("/visit-history/:id/",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, "client_visit", "update"),
			visitHandler.Update,
		)

		clients.DELETE("/visit-history/:id/",
			middleware.RateLimitByUser(0.5, 1),
			middleware.RBACAuthorize(rbacService, "client_visit", "delete"),
			visitHandler.Delete,
		)
	}
}
