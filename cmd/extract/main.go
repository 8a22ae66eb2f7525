package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bidflow/internal/mailstore"
	"bidflow/internal/nermodel"
	"bidflow/internal/repositories"
	"bidflow/internal/services"
)

const (
	defaultKeyword     = "Bid"
	defaultReport      = "bid_requests.xlsx"
	defaultCorrections = "corrections.json"
	defaultModelPath   = "ner_model.json"
)

func main() {
	storePath := flag.String("store", os.Getenv("BIDFLOW_STORE"), "path to the JSON mail store")
	keyword := flag.String("keyword", envOr("BIDFLOW_KEYWORD", defaultKeyword), "folder name keyword (case-sensitive)")
	countSpec := flag.String("count", "15", "how many recent emails to process, optionally \"count,offset\"")
	days := flag.Int("days", 0, "process all emails from the last N days instead of a count")
	strategy := flag.String("strategy", "api", "extraction strategy: api or local")
	modelPath := flag.String("model", envOr("BIDFLOW_NER_MODEL", defaultModelPath), "trained labeler file (local strategy)")
	threshold := flag.Float64("threshold", 0, "confidence floor for labeler spans (local strategy)")
	reportPath := flag.String("report", envOr("BIDFLOW_REPORT", defaultReport), "output Excel file")
	correctionsPath := flag.String("corrections", envOr("BIDFLOW_CORRECTIONS", defaultCorrections), "corrections file")
	verbose := flag.Bool("verbose", false, "log every processed subject")
	noReview := flag.Bool("no-review", false, "skip the interactive duplicate review")
	flag.Parse()

	if *storePath == "" {
		log.Fatal("BIDFLOW_STORE is not set and -store was not given")
	}

	store, err := mailstore.OpenJSONStore(*storePath)
	if err != nil {
		log.Fatalf("Failed to open mail store: %v", err)
	}

	located := mailstore.FindFolders(store, *keyword)
	if len(located) == 0 {
		log.Fatalf("No folders matching %q found in %s", *keyword, *storePath)
	}
	for _, loc := range located {
		log.Printf("Found folder: %s", loc.Path)
	}

	sel := mailstore.Selection{Days: *days}
	if *days <= 0 {
		sel, err = mailstore.ParseCountSpec(*countSpec)
		if err != nil {
			log.Fatalf("Invalid -count: %v", err)
		}
	}

	extractor := buildExtractor(*strategy, *modelPath, *threshold)
	log.Printf("Using %s extraction strategy", extractor.Name())

	ctx := context.Background()
	pipeline := &services.Pipeline{
		Extractor:   extractor,
		Corrections: services.NewCorrectionStore(*correctionsPath),
		ReportPath:  *reportPath,
		Verbose:     *verbose,
	}
	if !*noReview {
		pipeline.Prompter = services.NewConsolePrompter(os.Stdin, os.Stdout)
		// Interactive runs process exactly one folder; a bad answer falls
		// back to the first match.
		located = []mailstore.Located{services.ChooseFolder(pipeline.Prompter, located)}
	}

	// Optional run archive.
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer pool.Close()
		pipeline.Archive = repositories.NewProjectRepository(pool)
		log.Println("✅ Run archive enabled")
	}

	projects, stats, err := pipeline.RunAll(ctx, located, sel)
	if err != nil {
		log.Fatalf("❌ Extraction run failed: %v", err)
	}

	log.Println("✅ Extraction run completed")
	log.Printf("📊 Statistics:")
	log.Printf("   Selected: %d", stats.Selected)
	log.Printf("   Extracted: %d", stats.Extracted)
	log.Printf("   Empty: %d", stats.Errors)
	log.Printf("   Tagged: %d", stats.Tagged)
	log.Printf("   Projects: %d", len(projects))
	log.Printf("   Duration: %s", stats.Duration.Round(time.Millisecond))
}

func buildExtractor(strategy, modelPath string, threshold float64) services.Extractor {
	switch strategy {
	case "api":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			log.Fatal("OPENAI_API_KEY is not set")
		}
		return services.NewPromptExtractor(apiKey, os.Getenv("BIDFLOW_MODEL"))
	case "local":
		model, err := nermodel.Load(modelPath)
		if err != nil {
			log.Fatalf("Failed to load labeler from %s: %v", modelPath, err)
		}
		return services.NewLocalExtractor(model, threshold)
	}
	log.Fatalf("Unknown strategy %q (want api or local)", strategy)
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
