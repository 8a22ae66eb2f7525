package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"math/rand"
	"os"
	"strings"

	"bidflow/internal/mailstore"
	"bidflow/internal/nermodel"
	"bidflow/internal/services"
)

const (
	defaultIterations = 30
	defaultBatchSize  = 8
	snippetLength     = 300
)

func main() {
	storePath := flag.String("store", os.Getenv("BIDFLOW_STORE"), "path to the JSON mail store")
	keyword := flag.String("keyword", envOr("BIDFLOW_KEYWORD", "Bid"), "folder name keyword (case-sensitive)")
	modelPath := flag.String("model", envOr("BIDFLOW_NER_MODEL", "ner_model.json"), "labeler file to update")
	sample := flag.Int("sample", 10, "how many emails to review this session")
	iterations := flag.Int("iterations", defaultIterations, "training iterations")
	batchSize := flag.Int("batch", defaultBatchSize, "minibatch size")
	flag.Parse()

	if *storePath == "" {
		log.Fatal("BIDFLOW_STORE is not set and -store was not given")
	}

	store, err := mailstore.OpenJSONStore(*storePath)
	if err != nil {
		log.Fatalf("Failed to open mail store: %v", err)
	}

	model, fresh := loadOrCreate(*modelPath)
	if fresh {
		log.Println("⚠️  No existing model, starting from scratch")
	} else {
		log.Printf("Loaded model with %d features (%d iterations so far)",
			model.FeatureCount(), model.Iterations)
	}

	messages := collectMessages(store, *keyword)
	if len(messages) == 0 {
		log.Fatalf("No messages found in folders matching %q", *keyword)
	}
	rand.Shuffle(len(messages), func(i, j int) {
		messages[i], messages[j] = messages[j], messages[i]
	})

	prompter := services.NewConsolePrompter(os.Stdin, os.Stdout)
	var examples []nermodel.Example
	reviewed := 0

	for _, message := range messages {
		if reviewed >= *sample {
			break
		}
		body := message.Body()
		predicted := predictions(model, body)
		// Active learning: review only messages the model already commits to,
		// unless there is no model yet.
		if !fresh && !allThreePredicted(predicted) {
			continue
		}

		reviewed++
		prompter.Say("\n--- Email %d of %d ---", reviewed, *sample)
		prompter.Say("Subject: %s", message.Subject())
		prompter.Say("%s", snippet(body))

		example, ok, err := reviewMessage(prompter, body, predicted)
		if err != nil {
			log.Fatalf("Training session aborted: %v", err)
		}
		if ok {
			examples = append(examples, example)
		}
	}

	if len(examples) == 0 {
		log.Println("No confirmed examples this session, nothing to train on")
		return
	}

	log.Printf("Training on %d confirmed examples...", len(examples))
	model.Train(examples, *iterations, *batchSize, log.Printf)
	if err := model.Save(*modelPath); err != nil {
		log.Fatalf("❌ Failed to save model: %v", err)
	}
	log.Printf("✅ Model saved to %s (%d features)", *modelPath, model.FeatureCount())
}

func loadOrCreate(path string) (*nermodel.Model, bool) {
	model, err := nermodel.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("Failed to load model %s: %v", path, err)
		}
		return nermodel.New(), true
	}
	return model, false
}

func collectMessages(store mailstore.Store, keyword string) []mailstore.Message {
	var messages []mailstore.Message
	for _, loc := range mailstore.FindFolders(store, keyword) {
		found, err := loc.Folder.Messages()
		if err != nil {
			log.Printf("⚠️  Skipping folder %s: %v", loc.Path, err)
			continue
		}
		messages = append(messages, found...)
	}
	return messages
}

// predictions maps each core label to the model's first span text.
func predictions(model *nermodel.Model, body string) map[string]string {
	predicted := map[string]string{}
	for _, span := range model.Predict(body) {
		if _, seen := predicted[span.Label]; !seen {
			predicted[span.Label] = span.Text
		}
	}
	return predicted
}

func allThreePredicted(predicted map[string]string) bool {
	return predicted[nermodel.LabelProjectName] != "" &&
		predicted[nermodel.LabelContractor] != "" &&
		predicted[nermodel.LabelBidDueDate] != ""
}

// reviewMessage confirms or corrects each field with the user and converts
// the accepted values into located entity spans. Values the user supplies
// that do not occur in the body are skipped with a warning.
func reviewMessage(prompter services.Prompter, body string, predicted map[string]string) (nermodel.Example, bool, error) {
	fields := []struct {
		label  string
		prompt string
		format func(string) string
	}{
		{nermodel.LabelProjectName, "Project name", nil},
		{nermodel.LabelContractor, "Contractor", nil},
		{nermodel.LabelBidDueDate, "Bid due date", services.FormatTrainingDate},
	}

	var entities []nermodel.Entity
	for _, field := range fields {
		suggestion := predicted[field.label]
		answer, err := prompter.Ask(fmt.Sprintf("%s [%s]: ", field.prompt, suggestion))
		if err != nil {
			return nermodel.Example{}, false, err
		}
		value := strings.TrimSpace(answer)
		if value == "" {
			value = suggestion
		}
		if value == "" || value == "-" {
			continue
		}
		if field.format != nil {
			value = field.format(value)
		}

		start := strings.Index(body, value)
		if start < 0 {
			prompter.Say("⚠️  %q not found in the email body, skipping", value)
			continue
		}
		entities = append(entities, nermodel.Entity{
			Start: start,
			End:   start + len(value),
			Label: field.label,
		})
	}

	if len(entities) == 0 {
		return nermodel.Example{}, false, nil
	}
	return nermodel.Example{Text: body, Entities: entities}, true, nil
}

func snippet(body string) string {
	s := strings.TrimSpace(body)
	if len(s) > snippetLength {
		s = s[:snippetLength] + "..."
	}
	return s
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
