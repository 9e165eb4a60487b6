package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"limslite-service/internal/app/config"

	_ "github.com/lib/pq"
)

// NewPostgresDB opens the pool shared by the ingestion path and the
// dashboard. Ingestion transactions hold one connection each, so
// MaxOpenConns bounds concurrent message commits.
func NewPostgresDB(driverConfig *config.DriverConfig) *sql.DB {
	pg := driverConfig.PostgresDB
	connectionString := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s application_name=%s",
		pg.Host, pg.Port, pg.Username, pg.Password, pg.DBName, pg.SSLMode, pg.ApplicationName)

	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		log.Fatalf("Failed to open postgres database connection: %s", err.Error())
	}

	db.SetMaxOpenConns(pg.MaxOpenConns)
	db.SetMaxIdleConns(pg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(pg.ConnMaxLifetimeInMinutes) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to postgres database: %s", err.Error())
	}

	log.Println("Successfully connected to postgres database")
	return db
}
