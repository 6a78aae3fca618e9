package employee

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendify/internal/middleware"
	"attendify/internal/rbac"
)

func RegisterRoutes(
	r *gin.Engine,
	handler *Handler,
	attendanceHandler *AttendanceHandler,
	rbacService rbac.Service,
	logger *zap.Logger,
) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	employees.Use(middleware.ContextLogger(logger))
	{
		employees.GET("/",
			middleware.RateLimitByUser(10, 20),
			middleware.RBACAuthorize(rbacService, "employee", "read"),
			handler.GetAll,
		)

		employees.GET("/options/",
			middleware.RateLimitByUser(20, 40),
			middleware.RBACAuthorize(rbacService, "employee", "read"),
			handler.GetOptions,
		)

		employees.GET("/:id/",
			middleware.RateLimitByUser(10, 20),
			middleware.RBACAuthorize(rbacService, "employee", "read"),
			handler.GetById,
		)

		employees.POST("/",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, "employee", "create"),
			handler.Create,
		)

		employees.PUT("/:id/",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, "employee", "update"),
			handler.Update,
		)

		employees.DELETE("/:id/",
			middleware.RateLimitByUser(0.5, 1),
			middleware.RBACAuthorize(rbacService, "employee", "delete"),
			handler.Delete,
		)

		// Device-reporting surface: attendance facts arrive at a much
		// higher rate than admin edits.
		employees.POST("/attendance/",
			middleware.RateLimitByUser(30, 60),
			middleware.RBACAuthorize(rbacService, "employee_attendance", "create"),
			attendanceHandler.Create,
		)

		employees.GET("/attendance/",
			middleware.RateLimitByUser(10, 20),
			middleware.RBACAuthorize(rbacService, "employee_attendance", "read"),
			attendanceHandler.GetAll,
		)

		employees.GET("/attendance/:id/",
			middleware.RateLimitByUser(10, 20),
			middleware.RBACAuthorize(rbacService, "employee_attendance", "read"),
			attendanceHandler.GetById,
		)

		employees.PUT("/attendance/:id/",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, "employee_attendance", "update"),
			attendanceHandler.Update,
		)

		employees.DELETE("/attendance/:id/",
			middleware.RateLimitByUser(0.5, 1),
			middleware.RBACAuthorize(rbacService, "employee_attendance", "delete"),
			attendanceHandler.Delete,
		)
	}
}
