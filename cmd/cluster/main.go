package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"bidflow/internal/mailstore"
	"bidflow/internal/services"
)

func main() {
	storePath := flag.String("store", os.Getenv("BIDFLOW_STORE"), "path to the JSON mail store")
	keyword := flag.String("keyword", envOr("BIDFLOW_KEYWORD", "Bid"), "folder name keyword (case-sensitive)")
	vectorizerPath := flag.String("vectorizer", envOr("BIDFLOW_VECTORIZER", "vectorizer.json"), "persisted vectorizer file")
	threshold := flag.Float64("threshold", 0.5, "cosine distance under which subjects cluster together")
	flag.Parse()

	if *storePath == "" {
		log.Fatal("BIDFLOW_STORE is not set and -store was not given")
	}

	store, err := mailstore.OpenJSONStore(*storePath)
	if err != nil {
		log.Fatalf("Failed to open mail store: %v", err)
	}

	var subjects []string
	for _, loc := range mailstore.FindFolders(store, *keyword) {
		messages, err := loc.Folder.Messages()
		if err != nil {
			log.Printf("⚠️  Skipping folder %s: %v", loc.Path, err)
			continue
		}
		for _, message := range messages {
			subjects = append(subjects, message.Subject())
		}
	}
	if len(subjects) == 0 {
		log.Fatalf("No messages found in folders matching %q", *keyword)
	}

	processed := make([]string, len(subjects))
	for i, subject := range subjects {
		processed[i] = services.PreprocessSubject(subject)
	}

	vectorizer := services.LoadVectorizer(*vectorizerPath)
	vectorizer.Fit(processed)
	if err := vectorizer.Save(*vectorizerPath); err != nil {
		log.Fatalf("❌ Failed to save vectorizer: %v", err)
	}
	log.Printf("✅ Vectorizer saved to %s (%d documents, %d terms)",
		*vectorizerPath, vectorizer.Docs, len(vectorizer.DocFreq))

	vectors := make([]map[string]float64, len(processed))
	for i, subject := range processed {
		vectors[i] = vectorizer.Transform(subject)
	}

	clusters := services.ClusterSubjects(vectors, *threshold)
	log.Printf("📊 %d subjects grouped into %d clusters (threshold %.2f)",
		len(subjects), len(clusters), *threshold)
	for i, cluster := range clusters {
		fmt.Printf("Cluster %d (%d messages):\n", i+1, len(cluster))
		for _, idx := range cluster {
			fmt.Printf("  - %s\n", subjects[idx])
		}
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
