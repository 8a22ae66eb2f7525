package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"bidflow/internal/mailstore"
)

func main() {
	storePath := flag.String("store", os.Getenv("BIDFLOW_STORE"), "path to the JSON mail store")
	keyword := flag.String("keyword", envOr("BIDFLOW_KEYWORD", "Bid"), "folder name keyword (case-sensitive)")
	snippets := flag.Bool("snippets", false, "print a subject listing per folder, newest first")
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

	log.Printf("✅ Store %s opened, %d matching folder(s)", *storePath, len(located))
	for _, loc := range located {
		messages, err := loc.Folder.Messages()
		if err != nil {
			log.Printf("⚠️  %s: %v", loc.Path, err)
			continue
		}
		fmt.Printf("%s: %d message(s)\n", loc.Path, len(messages))

		if !*snippets {
			continue
		}
		sorted := make([]mailstore.Message, len(messages))
		copy(sorted, messages)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ReceivedTime().After(sorted[j].ReceivedTime())
		})
		for _, m := range sorted {
			subject := strings.TrimSpace(m.Subject())
			if subject == "" {
				subject = "(no subject)"
			}
			fmt.Printf("  %s  %s\n", m.ReceivedTime().Format("2006-01-02 15:04"), subject)
		}
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
