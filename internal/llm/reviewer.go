package llm

import (
	"context"
	"fmt"

	"github.com/dmaldon/resolutor/internal/model"
)

// Reviewer wraps a provider and produces ReviewNotes for reports
type Reviewer struct {
	provider Provider
	config   Config
}

// NewReviewer creates a reviewer from configuration. Returns an error when
// the configured provider cannot be constructed; a disabled configuration
// yields a reviewer whose IsEnabled is false.
func NewReviewer(config Config) (*Reviewer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	return &Reviewer{
		provider: provider,
		config:   config,
	}, nil
}

// IsEnabled reports whether a provider is configured
func (r *Reviewer) IsEnabled() bool {
	return r != nil && r.provider != nil
}

// GenerateNote asks the provider for a review note about the report
func (r *Reviewer) GenerateNote(ctx context.Context, report *model.Report) (*model.ReviewNote, error) {
	if !r.IsEnabled() {
		return nil, nil
	}

	resp, err := r.provider.Review(ctx, ReviewRequest{
		Report:    report,
		Model:     r.config.Model,
		MaxTokens: r.config.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	return &model.ReviewNote{
		Provider: r.provider.Name(),
		Model:    resp.Model,
		Note:     resp.Note,
	}, nil
}
