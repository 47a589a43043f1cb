package app

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/NazarKuzyk/TodoList/internal/cache"
	"github.com/NazarKuzyk/TodoList/internal/config"
	"github.com/NazarKuzyk/TodoList/internal/database"
	"github.com/NazarKuzyk/TodoList/internal/handlers"
	"github.com/NazarKuzyk/TodoList/internal/middleware"
	"github.com/NazarKuzyk/TodoList/internal/monitoring"
	"github.com/NazarKuzyk/TodoList/internal/services"
	"github.com/NazarKuzyk/TodoList/internal/session"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg *config.Config, pool *database.DatabasePool, rdb *redis.Client, metrics *monitoring.Metrics, health *monitoring.HealthChecker) {
	sessions := session.NewManager(
		session.NewStore(rdb, cfg.Auth.SessionTTL),
		session.NewCodec(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL),
		cfg.Auth.SessionCookie,
		cfg.IsProduction(),
	)

	redisCache := cache.NewRedisCache(rdb)
	taskCache := cache.NewTaskCache(redisCache, cfg.Redis.CacheTTL)
	taskService := services.NewCachedTaskService(services.NewTaskService(), taskCache)

	db := pool.DB
	authHandler := handlers.NewAuthHandler(db, services.NewAuthService(), sessions)
	registerHandler := handlers.NewRegisterHandler(db, services.NewRegisterService(cfg.Auth.BCryptCost), sessions)
	logoutHandler := handlers.NewLogoutHandler(sessions)
	taskHandler := handlers.NewTaskHandler(db, taskService)

	registerAuthRoutes(r, cfg, authHandler, registerHandler, logoutHandler)
	registerTaskRoutes(r, sessions, taskHandler)

	r.GET("/health", health.Handler())
	r.GET("/health/live", metrics.LivenessHandler())
	r.GET("/metrics", metrics.Handler(map[string]monitoring.StatsSource{
		"database":   pool.Stats,
		"redis":      redisCache.Stats,
		"task_cache": taskService.CacheStats,
	}))
}

func registerAuthRoutes(r *gin.Engine, cfg *config.Config, auth *handlers.AuthHandler, register *handlers.RegisterHandler, logout *handlers.LogoutHandler) {
	// The credential POSTs share one limiter; they are the only routes
	// worth brute-forcing.
	authLimit := middleware.RateLimit(cfg.RateLimit)

	r.GET("/login/", auth.ShowLogin)
	r.POST("/login/", authLimit, auth.Login)
	r.GET("/logout/", logout.Logout)
	r.GET("/register/", register.ShowRegister)
	r.POST("/register/", authLimit, register.Register)
}

func registerTaskRoutes(r *gin.Engine, sessions *session.Manager, h *handlers.TaskHandler) {
	authed := r.Group("/", middleware.RequireSession(sessions))
	authed.GET("", h.List)
	authed.GET("task/:id/", h.Detail)
	authed.GET("task-create/", h.CreateForm)
	authed.POST("task-create/", h.Create)
	authed.GET("task-update/:id/", h.UpdateForm)
	authed.POST("task-update/:id/", h.Update)
	authed.GET("task-delete/:id/", h.DeleteConfirm)
	authed.POST("task-delete/:id/", h.Delete)
}
