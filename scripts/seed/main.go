package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/reviewdesk/reviewdesk/internal/app"
	"github.com/reviewdesk/reviewdesk/internal/platform/db"
	"github.com/reviewdesk/reviewdesk/internal/records"
	"github.com/reviewdesk/reviewdesk/internal/records/store"
)

// Seeds the configured SQLite or PostgreSQL store. Tables that already hold
// records are left alone.
func main() {
	file := flag.String("file", os.Getenv("STORE_SEED_FILE"), "YAML seed file (defaults to the embedded fixture)")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	seed, err := store.DefaultSeed()
	if *file != "" {
		seed, err = store.LoadSeed(*file)
	}
	if err != nil {
		log.Fatalf("load seed: %v", err)
	}

	ctx := context.Background()
	switch cfg.StoreDriver {
	case app.DriverSQLite:
		fmt.Printf("→ Seeding %d records into %s...\n", len(seed), cfg.SQLitePath)
		repo, err := store.OpenSQLite(ctx, cfg.SQLitePath, seed)
		if err != nil {
			log.Fatalf("seed sqlite: %v", err)
		}
		report(ctx, repo)
		_ = repo.Close()
	case app.DriverPostgres:
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		fmt.Printf("→ Seeding %d records into postgres...\n", len(seed))
		repo := store.NewPostgresRepository(pool)
		if err := repo.Migrate(ctx, seed); err != nil {
			log.Fatalf("seed postgres: %v", err)
		}
		report(ctx, repo)
	default:
		log.Fatalf("STORE_DRIVER=%s keeps records in memory; nothing to seed", cfg.StoreDriver)
	}
}

func report(ctx context.Context, repo store.Repository) {
	_, total, err := repo.List(ctx, 1, 1)
	if err != nil {
		log.Fatalf("count records: %v", err)
	}
	fmt.Printf("✓ Store holds %d records (%d statuses known)\n", total, len(records.Statuses()))
}
