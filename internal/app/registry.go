package app

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendify/internal/broadcast"
	"attendify/internal/client"
	"attendify/internal/employee"
	"attendify/internal/rbac"
	"attendify/internal/shared/media"
	"attendify/internal/user"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	db *sql.DB,
	rdb *redis.Client,
	bus broadcast.Bus,
	mediaStore media.Store,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	attendanceRepo := employee.NewAttendanceRepository(gormDB)
	clientRepo := client.NewRepository(gormDB)
	visitRepo := client.NewVisitRepository(gormDB, db)
	userRepo := user.NewRepository(gormDB)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService(logger)
	if err != nil {
		return err
	}

	// --- Services ---
	employeeService := employee.NewService(employeeRepo, bus, mediaStore, rdb, logger)
	attendanceService := employee.NewAttendanceService(attendanceRepo, bus, mediaStore, logger)
	clientService := client.NewService(clientRepo, visitRepo, db, bus, mediaStore, logger)
	userService := user.NewService(userRepo, logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, mediaStore, logger)
	attendanceHandler := employee.NewAttendanceHandler(attendanceService, mediaStore, logger)
	clientHandler := client.NewHandler(clientService, mediaStore, logger)
	visitHandler := client.NewVisitHandler(clientService, logger)
	userHandler := user.NewHandler(userService, logger)
	wsHandler := broadcast.NewHandler(bus, sessionClock(), logger)

	// --- Routes Registration ---
	employee.RegisterRoutes(router, employeeHandler, attendanceHandler, rbacService, logger)
	client.RegisterRoutes(router, clientHandler, visitHandler, rbacService, logger)
	user.RegisterRoutes(router, userHandler, rbacService, logger)
	broadcast.RegisterRoutes(router, wsHandler)

	// Stored blobs are served straight off disk.
	router.Static("/media", getenv("MEDIA_ROOT", "media"))

	return nil
}
