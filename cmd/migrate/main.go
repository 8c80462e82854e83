package main

import (
	"log"
	"os"
	"strconv"

	"docvault-be/internal/model"
	"docvault-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: extensions GORM AutoMigrate cannot create
	log.Println("Step 1: Setting up extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate all models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.User{},
		&model.Document{},
		&model.DocumentChunk{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.Feedback{},
		&model.AuditEvent{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: indexes AutoMigrate does not cover
	log.Println("Step 3: Creating vector index...")

	postMigrationSQL := []string{
		// ANN index for cosine search. Lists sized for up to ~1M chunks;
		// re-tune as the corpus grows.
		`CREATE INDEX IF NOT EXISTS idx_chunks_embedding_cosine
		 ON document_chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);`,

		// Retrieval always filters by tenant before the ANN scan.
		`CREATE INDEX IF NOT EXISTS idx_chunks_tenant ON document_chunks (tenant_id);`,

		`CREATE INDEX IF NOT EXISTS idx_audit_tenant_created
		 ON audit_events (tenant_id, created_at DESC);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	// 6. Row level security: the storage-layer tenant boundary. The
	// migration role owns the tables and stays unconstrained; every other
	// role only sees rows matching its app.tenant_id session setting.
	enableRLS := true
	if v, ok := os.LookupEnv("ENABLE_RLS"); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			enableRLS = parsed
		}
	}

	if enableRLS {
		log.Println("Step 4: Installing row level security policies...")
		for _, sql := range database.TenantIsolationStatements(database.TenantTables...) {
			if err := db.Exec(sql).Error; err != nil {
				log.Fatalf("Error: Failed to install row level security: %v", err)
			}
		}
	} else {
		log.Println("Step 4: Row level security disabled via ENABLE_RLS.")
	}

	log.Println("Success: Database migration completed via GORM.")
}
