package main

import (
	"context"
	"flag"
	"log"

	"github.com/Ingramml/ca-lobby-mono/internal/ingest"
	"github.com/Ingramml/ca-lobby-mono/internal/warehouse"
)

func main() {
	sourceID := flag.String("source", "calaccess", "Source ID to ingest")
	registryPath := flag.String("registry", "", "Path to a source registry file (default: embedded)")
	flag.Parse()

	registry, err := ingest.LoadRegistry(*registryPath)
	if err != nil {
		log.Fatalf("Failed to load source registry: %v", err)
	}

	ctx := context.Background()
	pool, err := warehouse.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := warehouse.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	pipeline := &ingest.Pipeline{
		Store:    warehouse.NewStore(pool),
		Registry: registry,
	}

	log.Printf("Starting ingestion for source: %s", *sourceID)
	result, err := pipeline.Run(ctx, *sourceID)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	log.Printf("Ingestion finished for %s. Found: %d, Saved: %d, Errors: %d",
		*sourceID, result.RowsFound, result.RowsSaved, result.RowErrors)
}
