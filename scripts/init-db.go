package main

import (
	"context"
	"log"
	"os"

	"washnet/internal/config"
	"washnet/internal/database"
	"washnet/internal/logging"
	"washnet/internal/migrations"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Init(os.Stdout, cfg.LogLevel)

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	err = migrations.RunMigrations(context.Background(), db, migrations.DefaultData{
		AdminName:     cfg.AdminName,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		BcryptCost:    cfg.BcryptCost,
	})
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	log.Println("Database initialization completed successfully!")
}
