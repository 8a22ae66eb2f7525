package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"bidflow/internal/handlers"
	"bidflow/internal/mailstore"
	"bidflow/internal/nermodel"
	"bidflow/internal/repositories"
	"bidflow/internal/services"
)

func main() {
	storePath := flag.String("store", os.Getenv("BIDFLOW_STORE"), "path to the JSON mail store")
	keyword := flag.String("keyword", envOr("BIDFLOW_KEYWORD", "Bid"), "folder name keyword (case-sensitive)")
	modelPath := flag.String("model", envOr("BIDFLOW_NER_MODEL", "ner_model.json"), "trained labeler file (local strategy)")
	reportPath := flag.String("report", envOr("BIDFLOW_REPORT", "bid_requests.xlsx"), "output Excel file")
	correctionsPath := flag.String("corrections", envOr("BIDFLOW_CORRECTIONS", "corrections.json"), "corrections file")
	addr := flag.String("addr", envOr("BIDFLOW_ADDR", ":8081"), "listen address")
	schedule := flag.String("schedule", os.Getenv("BIDFLOW_SCHEDULE"), "cron spec for unattended runs, e.g. \"0 2 * * *\" (empty disables)")
	scheduleDays := flag.Int("schedule-days", 1, "day window each scheduled run covers")
	flag.Parse()

	if *storePath == "" {
		log.Fatal("BIDFLOW_STORE is not set and -store was not given")
	}

	store, err := mailstore.OpenJSONStore(*storePath)
	if err != nil {
		log.Fatalf("Failed to open mail store: %v", err)
	}

	ctx := context.Background()
	var archive services.Archiver
	var projectsHandler *handlers.ProjectsHandler
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer pool.Close()
		repo := repositories.NewProjectRepository(pool)
		archive = repo
		projectsHandler = handlers.NewProjectsHandler(repo)
		log.Println("✅ Run archive enabled")
	}

	corrections := services.NewCorrectionStore(*correctionsPath)
	factory := extractorFactory(*modelPath)
	newPipeline := func(extractor services.Extractor) *services.Pipeline {
		// No Prompter: web and scheduled runs are non-interactive.
		return &services.Pipeline{
			Extractor:   extractor,
			Corrections: corrections,
			ReportPath:  *reportPath,
			Archive:     archive,
		}
	}

	runsHandler := handlers.NewRunsHandler(store, *keyword, factory, newPipeline, *reportPath)

	if *schedule != "" {
		c := cron.New()
		_, err := c.AddFunc(*schedule, func() {
			runScheduled(store, *keyword, factory, newPipeline, *scheduleDays)
		})
		if err != nil {
			log.Fatalf("Invalid -schedule %q: %v", *schedule, err)
		}
		c.Start()
		log.Printf("📅 Scheduled runs enabled: %s (last %d day(s) each)", *schedule, *scheduleDays)
	}

	r := gin.Default()
	handlers.RegisterRoutes(r, runsHandler, projectsHandler)

	log.Printf("Server running on %s", *addr)
	if err := r.Run(*addr); err != nil {
		log.Fatal(err)
	}
}

// extractorFactory builds per-run extractors. The chat client is cheap to
// construct; the labeler is loaded fresh so a retrain is picked up without a
// restart.
func extractorFactory(modelPath string) handlers.ExtractorFactory {
	return func(strategy string) (services.Extractor, error) {
		switch strategy {
		case "api":
			apiKey := os.Getenv("OPENAI_API_KEY")
			if apiKey == "" {
				return nil, errors.New("OPENAI_API_KEY is not set")
			}
			return services.NewPromptExtractor(apiKey, os.Getenv("BIDFLOW_MODEL")), nil
		case "local":
			model, err := nermodel.Load(modelPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load labeler: %w", err)
			}
			return services.NewLocalExtractor(model, 0), nil
		}
		return nil, fmt.Errorf("unknown strategy %q (want api or local)", strategy)
	}
}

// runScheduled performs one unattended run over every matching folder.
func runScheduled(store mailstore.Store, keyword string, factory handlers.ExtractorFactory,
	newPipeline func(services.Extractor) *services.Pipeline, days int) {
	located := mailstore.FindFolders(store, keyword)
	if len(located) == 0 {
		log.Printf("⚠️  Scheduled run: no folders matching %q", keyword)
		return
	}
	extractor, err := factory("api")
	if err != nil {
		// Fall back to the local labeler when no API key is configured.
		extractor, err = factory("local")
		if err != nil {
			log.Printf("⚠️  Scheduled run: no usable extractor: %v", err)
			return
		}
	}

	_, stats, err := newPipeline(extractor).RunAll(context.Background(), located,
		mailstore.Selection{Days: days})
	if err != nil {
		log.Printf("❌ Scheduled run failed: %v", err)
		return
	}
	log.Printf("📊 Scheduled run: %d selected, %d extracted, %d projects",
		stats.Selected, stats.Extracted, stats.Projects)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
