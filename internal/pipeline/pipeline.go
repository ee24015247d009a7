// Package pipeline orchestrates the full parse: raw OCR text is normalized,
// matched against the pattern library, and assembled into a validated
// record. The pipeline holds no mutable shared state, so one instance may
// parse distinct documents from multiple goroutines.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmaldon/resolutor/internal/assemble"
	"github.com/dmaldon/resolutor/internal/extract"
	"github.com/dmaldon/resolutor/internal/llm"
	"github.com/dmaldon/resolutor/internal/model"
	"github.com/dmaldon/resolutor/internal/normalize"
	"github.com/dmaldon/resolutor/internal/rules"
)

// Pipeline converts OCR output into structured resolution records
type Pipeline struct {
	normalizer *normalize.Normalizer
	engine     *extract.Engine
	assembler  *assemble.Assembler
	library    *rules.Library
	reviewer   *llm.Reviewer // Optional review-note generator (nil if disabled)
	config     *model.Config
}

// NewPipeline creates a pipeline from configuration, loading and compiling
// the pattern library once
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	library, err := rules.Open(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	var reviewer *llm.Reviewer
	if cfg.LLM.Provider != "" {
		r, err := llm.NewReviewer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			reviewer = r
		}
	}

	return &Pipeline{
		normalizer: normalize.New(),
		engine:     extract.New(library),
		assembler:  assemble.New(),
		library:    library,
		reviewer:   reviewer,
		config:     cfg,
	}, nil
}

// Library exposes the compiled pattern library (for `rules show` and cache
// keying)
func (p *Pipeline) Library() *rules.Library {
	return p.library
}

// Parse runs one document end to end. The report is always produced, with
// every per-field result and its provenance either way; the error is the
// validation rejection, nil when the record was assembled.
func (p *Pipeline) Parse(ctx context.Context, doc model.RawDocument) (*model.Report, error) {
	normalized := p.normalizer.Normalize(doc)
	fields := p.engine.Extract(normalized)
	record, err := p.assembler.Assemble(fields)

	report := &model.Report{
		Source:   doc.Source,
		ParsedAt: time.Now().UTC(),
		OCR:      ocrMeta(doc, normalized),
		Fields:   p.orderedFields(fields),
		Record:   record,
	}
	if err != nil {
		report.Rejected = err.Error()
	}

	// The review note is generated after assembly and never feeds back into
	// extraction; it only annotates records a human should look at.
	if p.reviewer != nil && needsReview(report) {
		note, nerr := p.reviewer.GenerateNote(ctx, report)
		if nerr != nil {
			fmt.Fprintf(os.Stderr, "Warning: review note generation failed: %v\n", nerr)
		} else {
			report.Review = note
		}
	}

	return report, err
}

// orderedFields lists results in the library's declared field order, keeping
// report output byte-stable
func (p *Pipeline) orderedFields(fields map[string]model.FieldResult) []model.FieldResult {
	out := make([]model.FieldResult, 0, len(fields))
	for _, field := range p.library.Fields() {
		out = append(out, fields[field])
	}
	return out
}

func ocrMeta(doc model.RawDocument, normalized model.NormalizedText) model.OCRMeta {
	meta := model.OCRMeta{Lines: len(normalized)}
	if mean, ok := doc.MeanConfidence(); ok {
		meta.MeanConfidence = &mean
	}
	return meta
}

// needsReview flags rejected documents and records with any fuzzy match
func needsReview(report *model.Report) bool {
	if report.Rejected != "" {
		return true
	}
	return report.Record != nil && report.Record.SourceConfidence != model.ConfidenceExact
}
