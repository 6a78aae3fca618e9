package app

import (
	"context"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"attendify/internal/broadcast"
	"attendify/internal/client"
	"attendify/internal/employee"
	"attendify/internal/shared/connection"
	"attendify/internal/shared/media"
	"attendify/internal/user"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// BuildApp connects infrastructure, selects the broadcast backend and
// registers every module's routes. The returned cleanup tears down the
// bus and the running fan-in goroutine during shutdown.
func BuildApp(router *gin.Engine, logger *zap.Logger) (func(), error) {
	gormDB, err := connection.ConnectGORMWithRetry(
		getenv("DB_HOST", "localhost"),
		getenv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getenv("DB_NAME", "attendify"),
		getenv("DB_PORT", "5432"),
		getenv("DB_SSLMODE", "disable"),
		5,
	)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	if err := gormDB.AutoMigrate(
		&employee.Employee{},
		&employee.Attendance{},
		&client.Client{},
		&client.ClientVisit{},
		&user.User{},
	); err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb, err = connection.ConnectRedisWithRetry(addr, 5)
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus, err := buildBus(ctx, rdb, logger)
	if err != nil {
		cancel()
		return nil, err
	}

	mediaStore := media.NewDiskStore(
		getenv("MEDIA_ROOT", "media"),
		getenv("MEDIA_BASE_URL", "/media"),
	)

	if err := registerModules(router, gormDB, sqlDB, rdb, bus, mediaStore, logger); err != nil {
		cancel()
		bus.Close()
		return nil, err
	}

	cleanup := func() {
		cancel()
		bus.Close()
		if rdb != nil {
			rdb.Close()
		}
		sqlDB.Close()
	}
	return cleanup, nil
}

// buildBus picks the fan-out backend. A single instance needs nothing
// beyond the in-process hub; redis and kafka keep multiple instances'
// subscribers in sync.
func buildBus(ctx context.Context, rdb *redis.Client, logger *zap.Logger) (broadcast.Bus, error) {
	backend := strings.ToLower(getenv("BROADCAST_BACKEND", "memory"))

	switch backend {
	case "redis":
		if rdb == nil {
			logger.Warn("BROADCAST_BACKEND=redis but REDIS_ADDR unset, falling back to memory")
			return broadcast.NewHub(logger), nil
		}
		bus := broadcast.NewRedisBus(rdb, logger)
		go bus.Run(ctx)
		return bus, nil

	case "kafka":
		brokers := strings.Split(getenv("KAFKA_BROKERS", "localhost:9092"), ",")
		bus := broadcast.NewKafkaBus(brokers, logger)
		go bus.Run(ctx)
		return bus, nil

	default:
		return broadcast.NewHub(logger), nil
	}
}

// Clock shared by websocket sessions; swapped for a fake in tests.
func sessionClock() clockwork.Clock {
	return clockwork.NewRealClock()
}
