package main

import (
	"context"
	"fmt"
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

	var runTotal int
	err = pool.QueryRow(ctx, "SELECT COUNT(*) FROM pipeline_run").Scan(&runTotal)
	if err != nil {
		log.Fatal("Failed to count runs:", err)
	}

	var projectTotal int
	err = pool.QueryRow(ctx, "SELECT COUNT(*) FROM project").Scan(&projectTotal)
	if err != nil {
		log.Fatal("Failed to count projects:", err)
	}

	var versionTotal int
	err = pool.QueryRow(ctx, "SELECT COUNT(*) FROM project_version").Scan(&versionTotal)
	if err != nil {
		log.Fatal("Failed to count versions:", err)
	}

	fmt.Printf("📊 Archive Statistics:\n")
	fmt.Printf("   Runs: %d\n", runTotal)
	fmt.Printf("   Projects: %d\n", projectTotal)
	fmt.Printf("   Versions: %d\n", versionTotal)

	// Show the most recently updated projects
	rows, err := pool.Query(ctx, `
		SELECT name, bid_due_date, contractor_count
		FROM project ORDER BY last_updated DESC LIMIT 5
	`)
	if err != nil {
		log.Fatal("Failed to query:", err)
	}
	defer rows.Close()

	fmt.Printf("\n📋 Recently updated projects:\n")
	for rows.Next() {
		var name, dueDate string
		var contractors int
		if err := rows.Scan(&name, &dueDate, &contractors); err != nil {
			continue
		}
		fmt.Printf("   %s (due: %s, %d contractor(s))\n", name, dueDate, contractors)
	}
}
