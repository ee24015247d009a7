package model

import "time"

// Confidence classifies how a field value was obtained
type Confidence string

const (
	ConfidenceExact  Confidence = "exact"  // Primary pattern matched
	ConfidenceFuzzy  Confidence = "fuzzy"  // A fallback pattern matched
	ConfidenceAbsent Confidence = "absent" // No pattern matched
)

// rank orders tiers so that summaries can take a minimum
func (c Confidence) rank() int {
	switch c {
	case ConfidenceExact:
		return 2
	case ConfidenceFuzzy:
		return 1
	default:
		return 0
	}
}

// Min returns the lower of two confidence tiers
func (c Confidence) Min(other Confidence) Confidence {
	if other.rank() < c.rank() {
		return other
	}
	return c
}

// Field names recognized by the extraction engine
const (
	FieldResolutionNumber   = "resolution_number"
	FieldIssueDate          = "issue_date"
	FieldSessionType        = "session_type"
	FieldApprovingAuthority = "approving_authority"
	FieldClauses            = "clauses"
	FieldParticipants       = "participants"
	FieldTitle              = "title"
	FieldRecitals           = "recitals"
	FieldFinalProvisions    = "final_provisions"
	FieldClosing            = "closing"
	FieldCertification      = "certification"
)

// FieldResult is the outcome of extracting one field from one document.
// Single-value fields populate Value; multi-value fields populate Values.
type FieldResult struct {
	Field      string     `json:"field"`
	Value      string     `json:"value,omitempty"`
	Values     []string   `json:"values,omitempty"`
	Rule       string     `json:"rule,omitempty"` // Which pattern produced the value, for auditability
	Confidence Confidence `json:"confidence"`
}

// Matched reports whether any pattern produced a value for this field
func (r FieldResult) Matched() bool {
	return r.Confidence == ConfidenceExact || r.Confidence == ConfidenceFuzzy
}

// ResolutionRecord is the final structured entity for one resolution
// document. Immutable after assembly; resolution_number and issue_date are
// mandatory, all other fields default to explicit empty values rather than
// missing keys so consumers never branch on missing-vs-empty.
type ResolutionRecord struct {
	ResolutionNumber   string     `json:"resolution_number"`
	IssueDate          string     `json:"issue_date"` // ISO-8601 date
	SessionType        *string    `json:"session_type"`
	ApprovingAuthority *string    `json:"approving_authority"`
	Title              *string    `json:"title"`
	Recitals           []string   `json:"recitals"`
	Clauses            []string   `json:"clauses"`
	FinalProvisions    []string   `json:"final_provisions"`
	Participants       []string   `json:"participants"`
	Closing            *string    `json:"closing"`
	Certification      *string    `json:"certification"`
	SourceConfidence   Confidence `json:"source_confidence"`
}

// Report is the audit envelope around a parse: the record (if assembly
// succeeded), every per-field result with provenance, and OCR metadata.
type Report struct {
	Source   string            `json:"source"`
	ParsedAt time.Time         `json:"parsed_at"`
	OCR      OCRMeta           `json:"ocr"`
	Fields   []FieldResult     `json:"fields"`
	Record   *ResolutionRecord `json:"record,omitempty"`
	Rejected string            `json:"rejected,omitempty"` // Validation error when the document was rejected
	Review   *ReviewNote       `json:"review,omitempty"`
}

// OCRMeta summarizes what the OCR collaborator handed us
type OCRMeta struct {
	Lines          int      `json:"lines"`
	MeanConfidence *float64 `json:"mean_confidence,omitempty"` // nil when the engine gave no confidences
}

// ReviewNote is an optional LLM-generated note for human reviewers.
// It never affects extraction or validation.
type ReviewNote struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Note     string `json:"note"`
}
