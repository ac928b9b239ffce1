package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/store"
	"github.com/mrleolava/job-search-command-center/internal/store/schema"
	"github.com/mrleolava/job-search-command-center/internal/store/schema/migrations"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := store.NewPool(ctx, databaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	migrator := schema.NewMigrator(pool, logger)

	if err := migrator.CreateMigrationsTable(ctx); err != nil {
		logger.Fatal("failed to create migrations table", zap.Error(err))
	}

	applied, err := migrator.GetAppliedMigrations(ctx)
	if err != nil {
		logger.Fatal("failed to get applied migrations", zap.Error(err))
	}

	all := []schema.Migration{
		migrations.CreateCoreTables,
	}

	for _, migration := range all {
		if _, ok := applied[migration.Version]; ok {
			logger.Info("migration already applied",
				zap.Int("version", migration.Version),
				zap.String("description", migration.Description))
			continue
		}

		logger.Info("applying migration",
			zap.Int("version", migration.Version),
			zap.String("description", migration.Description))

		if err := migrator.ApplyMigration(ctx, migration); err != nil {
			logger.Fatal("failed to apply migration",
				zap.Int("version", migration.Version),
				zap.Error(err))
		}
	}

	logger.Info("all migrations completed")
}
