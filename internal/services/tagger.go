package services

import (
	"log"

	"bidflow/internal/mailstore"
)

// ProcessedCategory is the label set on every processed message so reruns
// can see at a glance what was already handled.
const ProcessedCategory = "Orange Category"

// TagProcessed marks a message as processed and saves it through the store.
// Failure is logged and swallowed; tagging never affects extracted data or
// aborts the batch.
func TagProcessed(message mailstore.Message) bool {
	message.SetCategory(ProcessedCategory)
	if err := message.Save(); err != nil {
		log.Printf("⚠️  Failed to set category for email %q: %v", message.Subject(), err)
		return false
	}
	return true
}
