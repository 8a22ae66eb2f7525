package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"bidflow/internal/models"
)

const (
	// Max retries for a single extraction call before giving up on the message
	maxExtractRetries = 3
	// Initial backoff duration between retries
	initialBackoff = 1 * time.Second
	// Hard per-call timeout so one slow call can't stall the batch
	extractTimeout = 60 * time.Second

	defaultChatModel = "gpt-4o"
)

const systemPrompt = "You are an assistant extracting project information from emails."

const extractPromptFormat = `Extract the following details from the email:

1. Project Name
2. Contractor
3. Bid Due Date
4. Job Walk (date/time, and which GC is hosting if known)
5. Description (brief project description, especially note union or prevailing wage)

Email Example:
Subject: %s
Body: %s

The format of the response should be:
Project Name: ...
Contractor: ...
Bid Due Date: ...
Job Walk: ...
Description: ...`

// PromptExtractor is the hosted strategy: one chat completion per email with
// a fixed prompt template, parsed by label prefix.
type PromptExtractor struct {
	client openai.Client
	model  openai.ChatModel
}

// NewPromptExtractor builds the hosted extractor. model may be empty to use
// the default.
func NewPromptExtractor(apiKey, model string) *PromptExtractor {
	if model == "" {
		model = defaultChatModel
	}
	return &PromptExtractor{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModel(model),
	}
}

func (e *PromptExtractor) Name() string { return "api" }

// Extract sends the subject and body to the chat model and parses the
// labeled response. Service failures are retried with backoff, then logged
// and swallowed: the returned record is all-null and the batch moves on.
func (e *PromptExtractor) Extract(ctx context.Context, subject, body string) models.BidRecord {
	content, err := e.complete(ctx, fmt.Sprintf(extractPromptFormat, subject, body))
	if err != nil {
		log.Printf("⚠️  Extraction failed for %q: %v", subject, err)
		return models.BidRecord{SourceSubject: subject}
	}

	record := ParseLabeledResponse(content)
	record.SourceSubject = subject
	return record
}

func (e *PromptExtractor) complete(ctx context.Context, prompt string) (string, error) {
	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= maxExtractRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, extractTimeout)
		resp, err := e.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(prompt),
			},
			Model:       e.model,
			MaxTokens:   openai.Int(500),
			Temperature: openai.Float(0.2),
		})
		cancel()

		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("no response choices returned")
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < maxExtractRetries {
			log.Printf("⚠️  Extraction attempt %d/%d failed, retrying in %v: %v",
				attempt, maxExtractRetries, backoff, err)
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return "", fmt.Errorf("extraction failed after %d attempts: %w", maxExtractRetries, lastErr)
}
