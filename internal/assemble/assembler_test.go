package assemble

import (
	"fmt"
	"testing"

	"github.com/dmaldon/resolutor/internal/model"
)

func exact(field, value string) model.FieldResult {
	return model.FieldResult{Field: field, Value: value, Confidence: model.ConfidenceExact}
}

func fuzzy(field, value string) model.FieldResult {
	return model.FieldResult{Field: field, Value: value, Confidence: model.ConfidenceFuzzy}
}

func minimalFields() map[string]model.FieldResult {
	return map[string]model.FieldResult{
		model.FieldResolutionNumber: exact(model.FieldResolutionNumber, "045-2024"),
		model.FieldIssueDate:        exact(model.FieldIssueDate, "2024-03-12"),
	}
}

func TestAssemble_MinimalRecord(t *testing.T) {
	record, err := New().Assemble(minimalFields())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if record.ResolutionNumber != "045-2024" {
		t.Errorf("ResolutionNumber = %q", record.ResolutionNumber)
	}
	if record.IssueDate != "2024-03-12" {
		t.Errorf("IssueDate = %q", record.IssueDate)
	}
	if record.SessionType != nil {
		t.Error("Absent session_type should be nil")
	}
	if record.Certification != nil {
		t.Error("Absent certification should be nil")
	}
	for name, slice := range map[string][]string{
		"Recitals":        record.Recitals,
		"Clauses":         record.Clauses,
		"FinalProvisions": record.FinalProvisions,
		"Participants":    record.Participants,
	} {
		if slice == nil {
			t.Errorf("%s should be an empty slice, not nil", name)
		}
		if len(slice) != 0 {
			t.Errorf("%s = %v, want empty", name, slice)
		}
	}
	if record.SourceConfidence != model.ConfidenceExact {
		t.Errorf("SourceConfidence = %q, want exact", record.SourceConfidence)
	}
}

func TestAssemble_MissingMandatoryFields(t *testing.T) {
	for _, missing := range []string{model.FieldResolutionNumber, model.FieldIssueDate} {
		fields := minimalFields()
		delete(fields, missing)

		_, err := New().Assemble(fields)
		if err == nil {
			t.Fatalf("Expected rejection when %s is missing", missing)
		}
		ve, ok := AsValidation(err)
		if !ok {
			t.Fatalf("Expected ValidationError, got %T", err)
		}
		if ve.Kind != KindMissingMandatory || ve.Field != missing {
			t.Errorf("Got %s/%s, want %s/%s", ve.Kind, ve.Field, KindMissingMandatory, missing)
		}
	}
}

func TestAssemble_AbsentResultIsMissingNotEmpty(t *testing.T) {
	fields := minimalFields()
	// An absent result present in the map must be treated like no result
	fields[model.FieldIssueDate] = model.FieldResult{
		Field:      model.FieldIssueDate,
		Confidence: model.ConfidenceAbsent,
	}

	_, err := New().Assemble(fields)
	ve, ok := AsValidation(err)
	if !ok || ve.Kind != KindMissingMandatory || ve.Field != model.FieldIssueDate {
		t.Errorf("Expected missing issue_date, got %v", err)
	}
}

func TestAssemble_MalformedDate(t *testing.T) {
	fields := minimalFields()
	// A matched but non-normalizable date travels through as the raw text
	fields[model.FieldIssueDate] = exact(model.FieldIssueDate, "32 de marzo de 2024")

	_, err := New().Assemble(fields)
	ve, ok := AsValidation(err)
	if !ok {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if ve.Kind != KindMalformed || ve.Field != model.FieldIssueDate {
		t.Errorf("Got %s/%s, want malformed issue_date", ve.Kind, ve.Field)
	}
	if got := ve.Error(); got != `malformed field "issue_date"` {
		t.Errorf("Error() = %q", got)
	}
}

func TestAssemble_ConfidenceIsMinimumOverMatched(t *testing.T) {
	fields := minimalFields()
	fields[model.FieldSessionType] = fuzzy(model.FieldSessionType, "ordinaria")
	fields[model.FieldClosing] = model.FieldResult{
		Field:      model.FieldClosing,
		Confidence: model.ConfidenceAbsent,
	}

	record, err := New().Assemble(fields)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if record.SourceConfidence != model.ConfidenceFuzzy {
		t.Errorf("SourceConfidence = %q, want fuzzy", record.SourceConfidence)
	}
	if record.SessionType == nil || *record.SessionType != "ordinaria" {
		t.Errorf("SessionType = %v", record.SessionType)
	}
}

func TestAssemble_CopiesMultiValueSlices(t *testing.T) {
	fields := minimalFields()
	values := []string{"Carlos Pérez Villa"}
	fields[model.FieldParticipants] = model.FieldResult{
		Field:      model.FieldParticipants,
		Values:     values,
		Confidence: model.ConfidenceExact,
	}

	record, err := New().Assemble(fields)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	values[0] = "mutated"
	if record.Participants[0] != "Carlos Pérez Villa" {
		t.Error("Record aliases the caller's slice")
	}
}

func TestAsValidation_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("processing doc.txt: %w", MissingMandatoryField(model.FieldResolutionNumber))
	ve, ok := AsValidation(wrapped)
	if !ok {
		t.Fatal("AsValidation should unwrap through fmt.Errorf chains")
	}
	if ve.Field != model.FieldResolutionNumber {
		t.Errorf("Field = %q", ve.Field)
	}

	if _, ok := AsValidation(fmt.Errorf("io failure")); ok {
		t.Error("Plain errors must not register as validation errors")
	}
}
