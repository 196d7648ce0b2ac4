package main

import (
	"fmt"
	"log"

	"braincells-be/internal/config"
	"braincells-be/internal/model"
	"braincells-be/pkg/database"
	"braincells-be/pkg/vectorindex"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		log.Fatalf("Error: pgvector extension is required: %v", err)
	}

	log.Println("Step 2: Running AutoMigrate...")
	if err := db.AutoMigrate(&model.Braincell{}, &vectorindex.Record{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// The vector column needs a fixed dimension before it can be indexed.
	log.Printf("Step 3: Fixing embedding dimension to %d and indexing...", cfg.Ai.EmbeddingDimensions)
	postMigrationSQL := []string{
		fmt.Sprintf(`ALTER TABLE braincell_vectors ALTER COLUMN embedding TYPE vector(%d);`, cfg.Ai.EmbeddingDimensions),
		`CREATE INDEX IF NOT EXISTS braincell_vectors_embedding_idx ON braincell_vectors USING hnsw (embedding vector_cosine_ops);`,
		`CREATE INDEX IF NOT EXISTS braincell_vectors_user_idx ON braincell_vectors ((metadata ->> 'user_id'));`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: post-migration SQL failed: %v", err)
		}
	}

	log.Println("Success: Database migration completed.")
}
