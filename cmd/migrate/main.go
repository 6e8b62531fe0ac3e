package main

import (
	"eventflow/internal/config" // Custom import path (Config)
	"eventflow/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	database, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		logrus.Fatal(err)
	}
	logrus.WithField("db_driver", cfg.DBDriver).Info("Database migrated successfully")
}
