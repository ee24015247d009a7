// Package normalize cleans raw OCR text into a stable line sequence that the
// extraction engine can match against.
//
// Normalization is a total function: any input produces some output, an empty
// document produces an empty sequence. It is also a fixed point, so running
// it twice yields the same result. The steps run in a fixed order because
// later steps assume earlier ones ran (wrap joining assumes trimmed lines,
// digit repair assumes folded glyphs).
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/dmaldon/resolutor/internal/model"
)

// Normalizer cleans raw OCR text. Stateless; safe for concurrent use.
type Normalizer struct{}

// New creates a Normalizer
func New() *Normalizer {
	return &Normalizer{}
}

// glyphFolder maps visually-identical characters OCR emits inconsistently to
// one canonical form. Applied after NFC composition.
var glyphFolder = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"‒", "-", // figure dash
	"−", "-", // minus sign
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"«", `"`, // «
	"»", `"`, // »
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"‚", "'", // low single quote
	" ", " ", // no-break space
	" ", " ", // figure space
	" ", " ", // thin space
	"\uFEFF", "", // BOM
	"\r", "",
)

var (
	reSpaceRun = regexp.MustCompile(`[ \t]{2,}`)

	// Tokens that look like numbers, dates or document codes. Digit repair is
	// confined to these so prose is never touched.
	reNumericToken = regexp.MustCompile(`\b[0-9OIl]+(?:[./-][0-9OIl]+)*\b`)

	digitFixer = strings.NewReplacer("O", "0", "I", "1", "l", "1")
)

// Normalize converts a raw OCR document into cleaned, ordered lines.
// Never fails; empty input yields an empty sequence.
func (n *Normalizer) Normalize(raw model.RawDocument) model.NormalizedText {
	text := foldGlyphs(raw.Text)
	lines := collapseWhitespace(strings.Split(text, "\n"))
	lines = joinWrappedLines(lines)
	lines = repairDigits(lines)

	if len(lines) == 0 {
		return model.NormalizedText{}
	}
	return model.NormalizedText(lines)
}

// foldGlyphs applies Unicode NFC composition and the glyph folding table
func foldGlyphs(s string) string {
	return glyphFolder.Replace(norm.NFC.String(s))
}

// collapseWhitespace trims each line, collapses space runs, and reduces
// blank-line runs to a single separator
func collapseWhitespace(lines []string) []string {
	out := make([]string, 0, len(lines))
	blank := true // Leading blank lines are dropped
	for _, line := range lines {
		line = strings.TrimSpace(reSpaceRun.ReplaceAllString(line, " "))
		if line == "" {
			if !blank {
				out = append(out, "")
				blank = true
			}
			continue
		}
		out = append(out, line)
		blank = false
	}
	// Drop a trailing separator left by trailing blank lines
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// joinWrappedLines reconstructs paragraphs broken by page width: a line with
// no terminal punctuation followed by a line starting lowercase is a wrap
// artifact, not a paragraph boundary.
func joinWrappedLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(out) > 0 {
			prev := out[len(out)-1]
			if prev != "" && line != "" && !endsSentence(prev) && startsLower(line) {
				out[len(out)-1] = prev + " " + line
				continue
			}
		}
		out = append(out, line)
	}
	return out
}

func endsSentence(line string) bool {
	r := rune(line[len(line)-1])
	switch r {
	case '.', ':', ';', '!', '?', '"':
		return true
	}
	return false
}

func startsLower(line string) bool {
	for _, r := range line {
		return unicode.IsLower(r)
	}
	return false
}

// repairDigits fixes known OCR digit confusions (O vs 0, l/I vs 1), but only
// inside tokens that contain at least one real digit
func repairDigits(lines []string) []string {
	for i, line := range lines {
		lines[i] = reNumericToken.ReplaceAllStringFunc(line, func(tok string) string {
			if !strings.ContainsAny(tok, "0123456789") {
				return tok
			}
			return digitFixer.Replace(tok)
		})
	}
	return lines
}
