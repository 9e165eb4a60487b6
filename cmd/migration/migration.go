package migration

import (
	"database/sql"
	"embed"
	"log"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

func Source() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "sql",
	}
}

func Run(db *sql.DB) {
	n, err := migrate.Exec(db, "postgres", Source(), migrate.Up)
	if err != nil {
		log.Fatalf("Error executing migration: %v", err)
	}

	log.Printf("Applied %d migrations!\n", n)
}
