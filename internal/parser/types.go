package parser

import (
	"encoding/json"
	"fmt"
	"os"
)

// NewsletterEmail holds everything extracted from a single newsletter message.
// It is constructed once by the parser and never mutated afterward.
type NewsletterEmail struct {
	MessageID      string   `json:"message_id"`
	ThreadID       string   `json:"thread_id"`
	Subject        string   `json:"subject"`
	Sender         string   `json:"sender"`
	SenderName     string   `json:"sender_name"`
	Recipient      string   `json:"recipient"`
	Date           string   `json:"date"`
	Timestamp      int64    `json:"timestamp"`
	ContentPlain   string   `json:"content_plain"`
	ContentHTML    string   `json:"content_html"`
	NewsletterName string   `json:"newsletter_name"`
	ArticleURLs    []string `json:"article_urls"`
	PrimaryURL     string   `json:"primary_url"`
	Labels         []string `json:"labels"`
	Snippet        string   `json:"snippet"`
}

// SaveJSON writes newsletters to a human-readable JSON file.
func SaveJSON(filename string, newsletters []NewsletterEmail) error {
	data, err := json.MarshalIndent(newsletters, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal newsletters: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	return nil
}

// LoadJSON reads newsletters back from a JSON file produced by SaveJSON.
func LoadJSON(filename string) ([]NewsletterEmail, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var newsletters []NewsletterEmail
	if err := json.Unmarshal(data, &newsletters); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	return newsletters, nil
}
