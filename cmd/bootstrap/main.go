// bootstrap 建出 doc_chunks 集合与 HNSW 索引，可重复执行。
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"deskmate-ai-api/internal/config"
	"deskmate-ai-api/internal/infrastructure/persistence/milvus"
	"deskmate-ai-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, cleanup, err := wire.InitializeVectorBootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init vector layer: %w", err)
	}
	defer cleanup()

	fmt.Printf("Ensuring collection %q...\n", milvus.CollectionDocChunks)
	if err := repo.EnsureDocChunksCollection(ctx); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	fmt.Printf("Collection %q is ready.\n", milvus.CollectionDocChunks)
	return nil
}
