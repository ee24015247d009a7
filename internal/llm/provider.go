// Package llm generates optional review notes for records that need human
// eyes: rejected documents and fuzzy-confidence records. The note is a side
// artifact. It never participates in extraction or validation, which stay
// fully deterministic and rule-driven.
package llm

import (
	"context"
	"fmt"

	"github.com/dmaldon/resolutor/internal/model"
)

// Provider is an LLM backend able to draft a review note
type Provider interface {
	// Name returns the provider name
	Name() string

	// Review drafts a short note describing what a reviewer should check
	Review(ctx context.Context, req ReviewRequest) (*ReviewResponse, error)
}

// ReviewRequest carries the parse report the note is about
type ReviewRequest struct {
	Report *model.Report

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ReviewResponse is the provider's output
type ReviewResponse struct {
	Note  string
	Model string
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., a local Ollama server)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 500,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:  c.Provider,
		Model:     c.Model,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	}
}

// BuildPrompt constructs the default review prompt. The prompt is grounded
// in the extraction report only; the model is told not to invent document
// content.
func BuildPrompt(report *model.Report) string {
	prompt := fmt.Sprintf(`You are annotating the output of a deterministic, rule-based parser for scanned institutional resolution documents. The parser already extracted everything it could; your note is for the human who reviews uncertain results.

RULES:
1. Only reference fields listed below. DO NOT invent document content.
2. Point the reviewer at the weakest fields first (fuzzy or absent).
3. 2-3 sentences, plain language.

Parse result for %s:
`, report.Source)

	if report.Rejected != "" {
		prompt += fmt.Sprintf("- Document REJECTED: %s\n", report.Rejected)
	}
	for _, f := range report.Fields {
		switch {
		case len(f.Values) > 0:
			prompt += fmt.Sprintf("- %s: %d values (%s, rule %s)\n", f.Field, len(f.Values), f.Confidence, f.Rule)
		case f.Matched():
			prompt += fmt.Sprintf("- %s: %q (%s, rule %s)\n", f.Field, f.Value, f.Confidence, f.Rule)
		default:
			prompt += fmt.Sprintf("- %s: absent\n", f.Field)
		}
	}
	if report.OCR.MeanConfidence != nil {
		prompt += fmt.Sprintf("- mean OCR confidence: %.1f\n", *report.OCR.MeanConfidence)
	}

	prompt += "\nWrite the review note."
	return prompt
}
