package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"washnet/internal/config"
	"washnet/internal/database"
	"washnet/internal/handlers"
	"washnet/internal/logging"
	"washnet/internal/metrics"
	"washnet/internal/migrations"
	"washnet/internal/redis"
	"washnet/internal/repository"
	"washnet/internal/services"
	"washnet/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Init(os.Stdout, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	location, err := cfg.Location()
	if err != nil {
		log.Fatal(err)
	}
	prices, err := cfg.Prices()
	if err != nil {
		log.Fatal(err)
	}
	catalog, err := services.NewServiceCatalog(prices)
	if err != nil {
		log.Fatal("Invalid price list:", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = migrations.RunMigrations(ctx, db, migrations.DefaultData{
		AdminName:     cfg.AdminName,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		BcryptCost:    cfg.BcryptCost,
	})
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	notifier := services.NewNoopNotifier()
	if cfg.WhatsAppEnabled {
		whatsappClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
		notifier = services.NewWhatsAppNotifier(whatsappClient)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize services
	sessionTTL := time.Duration(cfg.SessionTimeout) * time.Second
	userService := services.NewUserService(userRepo, redisClient, sessionTTL, cfg.BcryptCost)
	validator := services.NewOrderValidator(catalog, location, nil)
	orderService := services.NewOrderService(orderRepo, validator, notifier, m, location)

	router := handlers.NewRouter(handlers.RouterConfig{
		UserService:    userService,
		OrderService:   orderService,
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.ServerPort, "timezone", location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
