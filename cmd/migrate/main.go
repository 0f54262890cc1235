package main

import (
	"log"
	"os"

	"fabrikaops/internal/database"
	"fabrikaops/internal/migration"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	db, err := database.NewConnection(databaseDSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	if err := migration.Apply(db); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}
	log.Println("Migrations applied.")
}

func databaseDSN() string {
	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	return "postgres://" + get("DB_USER", "postgres") + ":" + get("DB_PASSWORD", "postgres") +
		"@" + get("DB_HOST", "localhost") + ":" + get("DB_PORT", "5432") +
		"/" + get("DB_NAME", "postgres") + "?sslmode=" + get("DB_SSLMODE", "disable")
}
