package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ValueNormalizer converts a matched substring into its canonical form.
// An error means the match was recognized but could not be normalized; the
// engine then keeps the cleaned raw match and lets the assembler decide.
type ValueNormalizer func(string) (string, error)

// normalizers is the process-wide registry, referenced by name from rule
// definitions. Read-only after init.
var normalizers = map[string]ValueNormalizer{
	"clean_line":      wrapClean(func(s string) (string, error) { return s, nil }),
	"resolution_code": wrapClean(normalizeResolutionCode),
	"date_iso":        wrapClean(normalizeDateISO),
	"session_type":    wrapClean(normalizeSessionType),
	"person_name":     wrapClean(normalizePersonName),
	"clause_text":     wrapClean(normalizeClauseText),
	"provision_text":  wrapClean(normalizeProvisionText),
	"single_line":     wrapClean(normalizeSingleLine),
}

var (
	reInnerSpace   = regexp.MustCompile(`\s+`)
	reSpacePunct   = regexp.MustCompile(`\s+([.,;:])`)
	reCodeGap      = regexp.MustCompile(`(?i)\b([A-ZÁÉÍÓÚÑ])-\s+`)
	reLeadingDash  = regexp.MustCompile(`^[-–—.\s]+`)
	reHonorific    = regexp.MustCompile(`^(?:Mgtr|MSc|Msc|Ing|Abg|Lcdo|Lcda|Lcd|Dr|Dra|Srta|Sra|Sr|Econ|Arq)\.?\s+`)
	reOrdinalSplit = regexp.MustCompile(`(?i)^(PRIMERA|SEGUNDA|TERCERA|CUARTA|QUINTA|SEXTA|S[ÉE]PTIMA|OCTAVA|NOVENA|D[ÉE]CIMA)\s*[.\-]*\s*`)
	reLongDate     = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+([a-záéíóúñ]+)\s+de\s+(\d{4})`)
	reNumericDate  = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
)

// CleanLine collapses whitespace and strays left by OCR: space runs to one
// space, spaces glued before punctuation removed, edges trimmed.
func CleanLine(s string) string {
	s = reInnerSpace.ReplaceAllString(s, " ")
	s = reSpacePunct.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// wrapClean runs CleanLine before the specific normalizer so every
// normalizer sees tidy input
func wrapClean(fn func(string) (string, error)) ValueNormalizer {
	return func(s string) (string, error) {
		return fn(CleanLine(s))
	}
}

// normalizeResolutionCode repairs spacing OCR introduces inside document
// codes, e.g. "R- OCS-SE-009" -> "R-OCS-SE-009"
func normalizeResolutionCode(s string) (string, error) {
	s = reCodeGap.ReplaceAllString(s, "$1-")
	s = strings.TrimRight(s, ".,;")
	if s == "" {
		return "", fmt.Errorf("empty resolution code")
	}
	return s, nil
}

var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// normalizeDateISO parses a Spanish long-form or numeric date into ISO-8601.
// Out-of-range components are an error, not silently rolled over.
func normalizeDateISO(s string) (string, error) {
	if m := reLongDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := spanishMonths[strings.ToLower(m[2])]
		if !ok {
			return "", fmt.Errorf("unknown month %q", m[2])
		}
		year, _ := strconv.Atoi(m[3])
		return buildISODate(year, month, day)
	}
	if m := reNumericDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 {
			return "", fmt.Errorf("month out of range: %d", month)
		}
		return buildISODate(year, time.Month(month), day)
	}
	return "", fmt.Errorf("unrecognized date: %q", s)
}

func buildISODate(year int, month time.Month, day int) (string, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (32 March becomes 1 April); reject it
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return "", fmt.Errorf("day out of range: %d", day)
	}
	return t.Format("2006-01-02"), nil
}

// normalizeSessionType maps session markers to canonical values
func normalizeSessionType(s string) (string, error) {
	switch strings.ToUpper(s) {
	case "ORDINARIA", "SO":
		return "ordinaria", nil
	case "EXTRAORDINARIA", "SE":
		return "extraordinaria", nil
	}
	return "", fmt.Errorf("unknown session type %q", s)
}

// normalizePersonName trims honorific prefixes and trailing punctuation from
// a recognized name
func normalizePersonName(s string) (string, error) {
	for {
		trimmed := reHonorific.ReplaceAllString(s, "")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	s = strings.Trim(s, " .,;")
	if s == "" {
		return "", fmt.Errorf("empty name")
	}
	return s, nil
}

// normalizeClauseText strips the leading list dash an article header leaves
// behind
func normalizeClauseText(s string) (string, error) {
	return strings.TrimSpace(reLeadingDash.ReplaceAllString(s, "")), nil
}

// normalizeProvisionText reformats a final provision as "ORDINAL. body"
func normalizeProvisionText(s string) (string, error) {
	m := reOrdinalSplit.FindStringSubmatch(s)
	if m == nil {
		return s, nil
	}
	body := strings.TrimSpace(s[len(m[0]):])
	return strings.ToUpper(m[1]) + ". " + body, nil
}

// normalizeSingleLine flattens a multi-line block into one line
func normalizeSingleLine(s string) (string, error) {
	return CleanLine(strings.ReplaceAll(s, "\n", " ")), nil
}
