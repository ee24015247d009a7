package llm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmaldon/resolutor/internal/model"
)

func TestNewProvider_DisabledAndUnknown(t *testing.T) {
	p, err := NewProvider(Config{Provider: ""})
	if err != nil || p != nil {
		t.Errorf("Empty provider should be disabled, got %v, %v", p, err)
	}

	if _, err := NewProvider(Config{Provider: "mistral"}); err == nil {
		t.Error("Unknown provider should error")
	}

	// Hosted OpenAI requires a key; Ollama does not
	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Error("OpenAI without an API key should error")
	}
	p, err = NewProvider(Config{Provider: "ollama"})
	if err != nil {
		t.Fatalf("Ollama provider failed: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Name = %q", p.Name())
	}
}

func TestReviewer_DisabledIsInert(t *testing.T) {
	r, err := NewReviewer(Config{Provider: ""})
	if err != nil {
		t.Fatalf("NewReviewer failed: %v", err)
	}
	if r.IsEnabled() {
		t.Error("Reviewer without a provider should be disabled")
	}

	note, err := r.GenerateNote(context.Background(), &model.Report{Source: "doc.txt"})
	if note != nil || err != nil {
		t.Errorf("Disabled reviewer produced %v, %v", note, err)
	}

	var nilReviewer *Reviewer
	if nilReviewer.IsEnabled() {
		t.Error("Nil reviewer must report disabled")
	}
}

func TestBuildPrompt_GroundedInReport(t *testing.T) {
	conf := 72.5
	report := &model.Report{
		Source:   "acta-045.txt",
		ParsedAt: time.Now().UTC(),
		OCR:      model.OCRMeta{Lines: 12, MeanConfidence: &conf},
		Fields: []model.FieldResult{
			{Field: model.FieldResolutionNumber, Value: "045-2024", Rule: "resolution_number/numbered", Confidence: model.ConfidenceExact},
			{Field: model.FieldIssueDate, Confidence: model.ConfidenceAbsent},
			{Field: model.FieldParticipants, Values: []string{"a", "b"}, Rule: "participants/name-role", Confidence: model.ConfidenceFuzzy},
		},
		Rejected: `missing mandatory field "issue_date"`,
	}

	prompt := BuildPrompt(report)

	for _, want := range []string{
		"acta-045.txt",
		"REJECTED",
		`"045-2024"`,
		"issue_date: absent",
		"2 values",
		"72.5",
		"DO NOT invent",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}
}
