package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"chainbank-backend/internal/config"
)

// Probes the configured Postgres database directly through database/sql and
// reports the schema state of the users table.
func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	sqlDB, err := sql.Open("postgres", config.AppConfig.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}

	var dbName string
	if err := sqlDB.QueryRow("SELECT current_database()").Scan(&dbName); err != nil {
		log.Fatalf("Failed to get database name: %v", err)
	}
	fmt.Printf("Connected to database: %s\n", dbName)

	var userCount int64
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM users").Scan(&userCount); err != nil {
		log.Fatalf("Failed to count users (run migrations first?): %v", err)
	}
	fmt.Printf("users table: %d rows\n", userCount)

	var size sql.NullInt64
	err = sqlDB.QueryRow(`
		SELECT character_maximum_length
		FROM information_schema.columns
		WHERE table_schema = 'public'
		AND table_name = 'users'
		AND column_name = 'public_address'
	`).Scan(&size)
	if err != nil {
		log.Fatalf("Failed to query column size: %v", err)
	}
	if size.Valid {
		fmt.Printf("users.public_address column size: VARCHAR(%d)\n", size.Int64)
		if size.Int64 < 66 {
			fmt.Printf("WARNING: public_address must hold 0x-prefixed addresses, need at least VARCHAR(66)\n")
		}
	}

	var txCount int64
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM submitted_transactions").Scan(&txCount); err != nil {
		log.Fatalf("Failed to count submitted transactions: %v", err)
	}
	fmt.Printf("submitted_transactions table: %d rows\n", txCount)
}
