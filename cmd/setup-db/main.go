package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer pool.Close()

	// Create pipeline_run table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS pipeline_run (
			id UUID PRIMARY KEY,
			folder TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			project_count INTEGER NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		log.Fatal("Failed to create pipeline_run table:", err)
	}
	log.Println("✅ Created pipeline_run table")

	_, err = pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_pipeline_run_started_at ON pipeline_run(started_at);`)
	if err != nil {
		log.Fatal("Failed to create index on pipeline_run:", err)
	}

	// Create project table with the consolidated columns
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS project (
			name TEXT PRIMARY KEY,
			contractors TEXT,
			bid_due_date VARCHAR,
			job_walk TEXT,
			description TEXT,
			contractor_count INTEGER NOT NULL DEFAULT 0,
			content_hash VARCHAR NOT NULL,
			first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		log.Fatal("Failed to create project table:", err)
	}
	log.Println("✅ Created project table")

	_, err = pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_project_bid_due_date ON project(bid_due_date);`)
	if err != nil {
		log.Fatal("Failed to create index on project:", err)
	}
	_, err = pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_project_last_updated ON project(last_updated);`)
	if err != nil {
		log.Fatal("Failed to create index on project:", err)
	}

	// Create project_version table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS project_version (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL REFERENCES project(name) ON DELETE CASCADE,
			content_hash VARCHAR NOT NULL,
			snapshot JSONB NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		log.Fatal("Failed to create project_version table:", err)
	}
	log.Println("✅ Created project_version table")

	_, err = pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_project_version_name ON project_version(name);`)
	if err != nil {
		log.Fatal("Failed to create index on project_version:", err)
	}
	_, err = pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_project_version_recorded_at ON project_version(recorded_at);`)
	if err != nil {
		log.Fatal("Failed to create index on project_version:", err)
	}

	log.Println("✅ Database setup complete!")
}
