package handlers

import (
	"net/http"
	"time"

	"washnet/internal/metrics"
	"washnet/internal/models"
	"washnet/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type RouterConfig struct {
	UserService    services.UserService
	OrderService   services.OrderService
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	authHandler := NewAuthHandler(cfg.UserService)
	orderHandler := NewOrderHandler(cfg.OrderService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(Metrics(cfg.Metrics))
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(cfg.Gatherer)))
	}

	api := router.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.GET("/orders/search", orderHandler.Search)

		staff := api.Group("")
		staff.Use(AuthRequired(cfg.UserService))
		{
			staff.POST("/logout", authHandler.Logout)
			staff.GET("/me", authHandler.Me)

			staff.GET("/orders", orderHandler.ListOrders)
			staff.POST("/orders", orderHandler.CreateOrder)
			staff.GET("/orders/statistics", orderHandler.Statistics)
			staff.GET("/orders/employee-overview", RequireRole(cfg.UserService, models.Admin), orderHandler.EmployeeOverview)
			staff.GET("/orders/:id", orderHandler.GetOrder)
			staff.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
			staff.GET("/orders/:id/history", orderHandler.GetHistory)

			staff.POST("/invitations", RequireRole(cfg.UserService, models.Admin), authHandler.CreateInvitation)
		}
	}

	return router
}
