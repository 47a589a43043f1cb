package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/NazarKuzyk/TodoList/internal/cache"
	"github.com/NazarKuzyk/TodoList/internal/config"
	"github.com/NazarKuzyk/TodoList/internal/database"
	"github.com/NazarKuzyk/TodoList/internal/middleware"
	"github.com/NazarKuzyk/TodoList/internal/monitoring"
)

// App owns the process-wide dependencies and the HTTP router.
type App struct {
	cfg    *config.Config
	pool   *database.DatabasePool
	redis  *redis.Client
	router *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	pool, err := database.NewDatabasePool(database.NewPoolConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	a.pool = pool

	if err := pool.Migrate(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	rdb, err := newRedis(cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}
	a.redis = rdb

	a.router = a.newRouter()
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		return a.pool.Close()
	}
	return nil
}

func newRedis(cfg *config.Config) (*redis.Client, error) {
	cacheConfig := cache.DefaultCacheConfig()
	cacheConfig.Addr = cfg.GetRedisAddr()
	cacheConfig.Password = cfg.Redis.Password
	cacheConfig.DB = cfg.Redis.DB
	cacheConfig.PoolSize = cfg.Redis.PoolSize
	cacheConfig.MinIdleConns = cfg.Redis.MinIdleConns

	client := cache.NewClient(cacheConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

func (a *App) newRouter() *gin.Engine {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RecoveryWithLog())
	r.Use(newCORS(a.cfg))

	metrics := monitoring.NewMetrics()
	r.Use(metrics.Middleware())

	health := monitoring.NewHealthChecker()
	health.Register("database", func(ctx context.Context) error {
		return a.pool.Health()
	})
	health.Register("redis", func(ctx context.Context) error {
		return a.redis.Ping(ctx).Err()
	})

	Setup(r, a.cfg, a.pool, a.redis, metrics, health)
	return r
}

// newCORS admits the configured origins with cookies. With no origins
// configured it falls back to the permissive credential-less default.
func newCORS(cfg *config.Config) gin.HandlerFunc {
	if len(cfg.Server.CORSOrigins) == 0 {
		return cors.Default()
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	return cors.New(corsConfig)
}
