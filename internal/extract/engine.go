// Package extract applies the pattern library to normalized text, producing
// per-field results with confidence and provenance.
package extract

import (
	"strings"

	"github.com/dmaldon/resolutor/internal/model"
	"github.com/dmaldon/resolutor/internal/rules"
)

// Engine matches extraction rules against normalized text. Each field is
// matched independently; fields share no state. The engine is a total
// function: unmatched fields yield absent results, never errors. Stateless
// and safe for concurrent use over a shared read-only library.
type Engine struct {
	library *rules.Library
}

// New creates an engine over a compiled pattern library
func New(library *rules.Library) *Engine {
	return &Engine{library: library}
}

// Extract runs every rule in the library against the text and returns one
// FieldResult per field. Output is deterministic: identical text and rules
// always produce identical results.
func (e *Engine) Extract(text model.NormalizedText) map[string]model.FieldResult {
	doc := text.String()
	results := make(map[string]model.FieldResult, len(e.library.Fields()))

	for _, field := range e.library.Fields() {
		rule, _ := e.library.Rule(field)
		results[field] = e.extractField(doc, rule)
	}

	return results
}

// extractField tries the rule's patterns in priority order. The primary
// pattern reports the exact tier; fallbacks report fuzzy. First success
// wins; no success yields an absent result regardless of optionality.
// Whether absence invalidates the document is the assembler's call.
func (e *Engine) extractField(doc string, rule *rules.Rule) model.FieldResult {
	section, ok := rule.Window.Cut(doc)
	if !ok {
		return absent(rule.Field)
	}

	for i, pattern := range rule.Patterns() {
		tier := model.ConfidenceExact
		if i > 0 {
			tier = model.ConfidenceFuzzy
		}

		if rule.Multi {
			values := matchAll(section, pattern, rule)
			if len(values) == 0 {
				continue
			}
			return model.FieldResult{
				Field:      rule.Field,
				Values:     values,
				Rule:       pattern.ID,
				Confidence: tier,
			}
		}

		value, matched := matchFirst(section, pattern, rule)
		if !matched {
			continue
		}
		return model.FieldResult{
			Field:      rule.Field,
			Value:      value,
			Rule:       pattern.ID,
			Confidence: tier,
		}
	}

	return absent(rule.Field)
}

// matchFirst returns the normalized first occurrence in document order.
// Documents are expected to state fields like the resolution number once,
// near the top; taking the first occurrence is the deterministic tie-break
// when they do not.
func matchFirst(section string, pattern *rules.Pattern, rule *rules.Rule) (string, bool) {
	m := pattern.Regexp().FindStringSubmatch(section)
	if m == nil {
		return "", false
	}
	raw := captured(m)
	if raw == "" {
		return "", false
	}
	value, err := rule.Normalize(raw)
	if err != nil {
		// Matched but not normalizable: keep the cleaned raw match so the
		// assembler can reject it as malformed rather than missing
		return rules.CleanLine(raw), true
	}
	return value, true
}

// matchAll collects every non-overlapping match, deduplicated by folded
// value, appearance order preserved
func matchAll(section string, pattern *rules.Pattern, rule *rules.Rule) []string {
	matches := pattern.Regexp().FindAllStringSubmatch(section, -1)
	if matches == nil {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var values []string
	for _, m := range matches {
		raw := captured(m)
		if raw == "" {
			continue
		}
		value, err := rule.Normalize(raw)
		if err != nil {
			continue
		}
		key := foldKey(value)
		if seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, value)
	}
	return values
}

// captured returns the first capture group, or the whole match for patterns
// without groups
func captured(m []string) string {
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

// foldKey is the dedup key for multi-value fields: case and inner whitespace
// are not identity
func foldKey(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}

func absent(field string) model.FieldResult {
	return model.FieldResult{
		Field:      field,
		Confidence: model.ConfidenceAbsent,
	}
}
