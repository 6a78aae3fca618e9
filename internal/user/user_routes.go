package user

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendify/internal/middleware"
	"attendify/internal/rbac"
)

func RegisterRoutes(
	r *gin.Engine,
	handler *Handler,
	rbacService rbac.Service,
	logger *zap.Logger,
) {
	// Registration is open: this is how the first admin account comes to
	// exist. Token issuance is an external concern.
	r.POST("/users/register/",
		middleware.ContextLogger(logger),
		middleware.RateLimitByClientIP(0.5, 2),
		handler.Register,
	)

	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	users.Use(middleware.ContextLogger(logger))
	{
		users.GET("/register/",
			middleware.RateLimitByUser(10, 20),
			middleware.RBACAuthorize(rbacService, "user", "read"),
			handler.GetAll,
		)

		users.GET("/me/",
			middleware.RateLimitByUser(20, 40),
			handler.Me,
		)

		users.GET("/user/:id/",
			middleware.RateLimitByUser(10, 20),
			middleware.RBACAuthorize(rbacService, "user", "read"),
			handler.GetById,
		)

		users.PUT("/user/:id/",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, "user", "update"),
			handler.Update,
		)

		users.DELETE("/user/:id/",
			middleware.RateLimitByUser(0.5, 1),
			middleware.RBACAuthorize(rbacService, "user", "delete"),
			handler.Delete,
		)
	}
}
