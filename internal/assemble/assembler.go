// Package assemble validates extracted fields and builds the final
// ResolutionRecord. It is the single point of truth for whether a document
// is usable: the normalizer and engine never reject, all rejection happens
// here.
package assemble

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmaldon/resolutor/internal/model"
)

// ErrorKind classifies why a document was rejected
type ErrorKind string

const (
	KindMissingMandatory ErrorKind = "missing_mandatory_field"
	KindMalformed        ErrorKind = "malformed_field"
)

// ValidationError rejects a document from automatic acceptance. Extraction
// is deterministic, so retrying the same input reproduces the same
// rejection; callers should route rejected documents to manual review.
type ValidationError struct {
	Kind  ErrorKind
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissingMandatory:
		return fmt.Sprintf("missing mandatory field %q", e.Field)
	case KindMalformed:
		return fmt.Sprintf("malformed field %q", e.Field)
	default:
		return fmt.Sprintf("invalid field %q", e.Field)
	}
}

// MissingMandatoryField reports that a required field had no matching pattern
func MissingMandatoryField(field string) *ValidationError {
	return &ValidationError{Kind: KindMissingMandatory, Field: field}
}

// MalformedField reports that a field matched but failed semantic
// normalization
func MalformedField(field string) *ValidationError {
	return &ValidationError{Kind: KindMalformed, Field: field}
}

// AsValidation unwraps a ValidationError from an error chain
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Assembler builds immutable ResolutionRecords from field results.
// Stateless; safe for concurrent use.
type Assembler struct{}

// New creates an Assembler
func New() *Assembler {
	return &Assembler{}
}

// Assemble validates the extracted fields and constructs the record.
//
// resolution_number and issue_date are mandatory; issue_date must be a
// canonical ISO-8601 date. Every other field tolerates absence and defaults
// to an explicit empty value (empty slice, null) so consumers never branch
// on a missing-vs-empty distinction.
func (a *Assembler) Assemble(fields map[string]model.FieldResult) (*model.ResolutionRecord, error) {
	number := fields[model.FieldResolutionNumber]
	if !number.Matched() {
		return nil, MissingMandatoryField(model.FieldResolutionNumber)
	}

	date := fields[model.FieldIssueDate]
	if !date.Matched() {
		return nil, MissingMandatoryField(model.FieldIssueDate)
	}
	if _, err := time.Parse("2006-01-02", date.Value); err != nil {
		return nil, MalformedField(model.FieldIssueDate)
	}

	record := &model.ResolutionRecord{
		ResolutionNumber:   number.Value,
		IssueDate:          date.Value,
		SessionType:        optionalValue(fields[model.FieldSessionType]),
		ApprovingAuthority: optionalValue(fields[model.FieldApprovingAuthority]),
		Title:              optionalValue(fields[model.FieldTitle]),
		Recitals:           optionalValues(fields[model.FieldRecitals]),
		Clauses:            optionalValues(fields[model.FieldClauses]),
		FinalProvisions:    optionalValues(fields[model.FieldFinalProvisions]),
		Participants:       optionalValues(fields[model.FieldParticipants]),
		Closing:            optionalValue(fields[model.FieldClosing]),
		Certification:      optionalValue(fields[model.FieldCertification]),
		SourceConfidence:   summarizeConfidence(fields),
	}

	return record, nil
}

// optionalValue maps an optional single-value result to its JSON
// representation: the value when matched, null when absent
func optionalValue(r model.FieldResult) *string {
	if !r.Matched() || r.Value == "" {
		return nil
	}
	v := r.Value
	return &v
}

// optionalValues maps a multi-value result to a never-nil slice
func optionalValues(r model.FieldResult) []string {
	if len(r.Values) == 0 {
		return []string{}
	}
	out := make([]string, len(r.Values))
	copy(out, r.Values)
	return out
}

// summarizeConfidence is the minimum confidence tier among fields that
// matched, so one fuzzy match is enough to flag the record for review
func summarizeConfidence(fields map[string]model.FieldResult) model.Confidence {
	summary := model.ConfidenceExact
	matched := false
	for _, r := range fields {
		if !r.Matched() {
			continue
		}
		matched = true
		summary = summary.Min(r.Confidence)
	}
	if !matched {
		return model.ConfidenceAbsent
	}
	return summary
}
