package model

import "strings"

// RawDocument is the text blob produced by the OCR collaborator.
// LineConfidence is optional; nil means "unknown confidence", not an error.
// A RawDocument is immutable once captured and owned by a single pipeline call.
type RawDocument struct {
	Source         string    // Origin identifier (file path, URL), for provenance only
	Text           string    // UTF-8 text blob from OCR
	LineConfidence []float64 // Per-line OCR confidence (0-100), parallel to input lines
}

// HasConfidence reports whether the OCR engine supplied per-line confidences
func (d RawDocument) HasConfidence() bool {
	return len(d.LineConfidence) > 0
}

// MeanConfidence returns the average per-line OCR confidence.
// The second return is false when no confidences were supplied.
func (d RawDocument) MeanConfidence() (float64, bool) {
	if len(d.LineConfidence) == 0 {
		return 0, false
	}
	var sum float64
	for _, c := range d.LineConfidence {
		sum += c
	}
	return sum / float64(len(d.LineConfidence)), true
}

// NormalizedText is the cleaned ordered sequence of lines derived from a
// RawDocument. It is derived data: regenerated on every run, never cached
// across inputs.
type NormalizedText []string

// String joins the normalized lines back into a single block for matching
func (t NormalizedText) String() string {
	return strings.Join(t, "\n")
}

// IsEmpty reports whether normalization produced no content
func (t NormalizedText) IsEmpty() bool {
	return len(t) == 0
}
