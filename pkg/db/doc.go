// Package db opens the PostgreSQL connection and applies schema migrations.
//
//	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
//
// GORM messages are written to the global zap logger; SQL text is logged
// only at debug, slow and failed queries always.
//
// Migrations are embedded from db/migrations and applied with golang-migrate:
//
//	version, err := db.Migrator{URL: cfg.DatabaseURL}.Up()
//
// Set Migrator.Dir to read migrations from disk while developing.
package db
