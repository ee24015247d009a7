// Package rules holds the pattern library: the ordered, named extraction
// rules the engine applies to normalized text. Rules are data, not code:
// they load once at startup from YAML (or the builtin set) and are read-only
// afterward, so a single Library is safe to share across concurrent parses.
package rules

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Pattern is one match attempt for a field
type Pattern struct {
	ID   string `yaml:"id"`
	Expr string `yaml:"expr"`

	re *regexp.Regexp
}

// Regexp returns the compiled expression
func (p *Pattern) Regexp() *regexp.Regexp {
	return p.re
}

// Window confines a rule to a document section delimited by marker patterns.
// A missing end marker extends the window to the end of the document; a
// missing start marker makes the rule unmatchable.
type Window struct {
	Start string `yaml:"start"`
	End   string `yaml:"end,omitempty"`

	startRe *regexp.Regexp
	endRe   *regexp.Regexp
}

// Cut returns the section of text this window selects.
// The second return is false when the start marker is not present.
func (w *Window) Cut(text string) (string, bool) {
	if w == nil {
		return text, true
	}
	loc := w.startRe.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	if w.endRe != nil {
		if end := w.endRe.FindStringIndex(rest); end != nil {
			rest = rest[:end[0]]
		}
	}
	return rest, true
}

// Rule is a named, ordered pattern definition for one field. The primary
// pattern carries the exact confidence tier; fallbacks are tried in declared
// order and carry the fuzzy tier.
type Rule struct {
	Field      string    `yaml:"field"`
	Primary    Pattern   `yaml:"primary"`
	Fallbacks  []Pattern `yaml:"fallbacks,omitempty"`
	Normalizer string    `yaml:"normalizer,omitempty"`
	Optional   bool      `yaml:"optional,omitempty"`
	Multi      bool      `yaml:"multi,omitempty"`
	Window     *Window   `yaml:"window,omitempty"`
}

// Patterns returns the rule's patterns in priority order, primary first
func (r *Rule) Patterns() []*Pattern {
	out := make([]*Pattern, 0, 1+len(r.Fallbacks))
	out = append(out, &r.Primary)
	for i := range r.Fallbacks {
		out = append(out, &r.Fallbacks[i])
	}
	return out
}

// Normalize applies the rule's value normalizer to a matched substring
func (r *Rule) Normalize(value string) (string, error) {
	fn, ok := normalizers[r.Normalizer]
	if !ok {
		return CleanLine(value), nil
	}
	return fn(value)
}

// Library is the read-only registry of extraction rules, one per field,
// in declared order
type Library struct {
	version string
	order   []string
	rules   map[string]*Rule
}

// libraryFile is the YAML shape of an external rules file
type libraryFile struct {
	Version string  `yaml:"version"`
	Rules   []*Rule `yaml:"rules"`
}

// Load reads and compiles a rules file
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var file libraryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	lib, err := build(file.Version, file.Rules)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return lib, nil
}

// build compiles a rule set into an immutable Library
func build(version string, ruleSet []*Rule) (*Library, error) {
	lib := &Library{
		version: version,
		rules:   make(map[string]*Rule, len(ruleSet)),
	}

	for _, rule := range ruleSet {
		if rule.Field == "" {
			return nil, fmt.Errorf("rule with empty field name")
		}
		if _, dup := lib.rules[rule.Field]; dup {
			return nil, fmt.Errorf("duplicate rule for field %q", rule.Field)
		}
		if err := compileRule(rule); err != nil {
			return nil, fmt.Errorf("field %q: %w", rule.Field, err)
		}
		lib.rules[rule.Field] = rule
		lib.order = append(lib.order, rule.Field)
	}

	return lib, nil
}

func compileRule(rule *Rule) error {
	if rule.Primary.Expr == "" {
		return fmt.Errorf("missing primary pattern")
	}
	if err := compilePattern(&rule.Primary); err != nil {
		return err
	}
	for i := range rule.Fallbacks {
		if err := compilePattern(&rule.Fallbacks[i]); err != nil {
			return err
		}
	}
	if rule.Normalizer != "" {
		if _, ok := normalizers[rule.Normalizer]; !ok {
			return fmt.Errorf("unknown normalizer %q", rule.Normalizer)
		}
	}
	if rule.Window != nil {
		var err error
		if rule.Window.Start == "" {
			return fmt.Errorf("window without start marker")
		}
		if rule.Window.startRe, err = regexp.Compile(rule.Window.Start); err != nil {
			return fmt.Errorf("window start: %w", err)
		}
		if rule.Window.End != "" {
			if rule.Window.endRe, err = regexp.Compile(rule.Window.End); err != nil {
				return fmt.Errorf("window end: %w", err)
			}
		}
	}
	return nil
}

func compilePattern(p *Pattern) error {
	if p.ID == "" {
		return fmt.Errorf("pattern with empty id")
	}
	re, err := regexp.Compile(p.Expr)
	if err != nil {
		return fmt.Errorf("pattern %q: %w", p.ID, err)
	}
	p.re = re
	return nil
}

// Version returns the declared version of the rule set
func (l *Library) Version() string {
	return l.version
}

// Fields returns field names in declared order
func (l *Library) Fields() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Rule returns the rule for a field
func (l *Library) Rule(field string) (*Rule, bool) {
	r, ok := l.rules[field]
	return r, ok
}

// MarshalYAML renders the library back to its file shape (for `rules show`)
func (l *Library) MarshalYAML() (interface{}, error) {
	file := libraryFile{Version: l.version}
	for _, field := range l.order {
		file.Rules = append(file.Rules, l.rules[field])
	}
	return file, nil
}
