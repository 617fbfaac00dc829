// Package redact masks credentials in text that leaves the process: error
// messages echoed by the endpoint, log lines, and reports.
package redact

import (
	"regexp"
	"strings"
)

// Placeholder replaces every redacted match.
const Placeholder = "[REDACTED]"

// Redactor replaces credential-shaped substrings with Placeholder.
// Built-in patterns cover common API key formats; literals cover the
// credential actually in use, whatever its shape.
type Redactor struct {
	patterns []*regexp.Regexp
	literals []string
}

var defaultPatterns = []*regexp.Regexp{
	// API keys (common prefixes)
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9_-]{20,})`),
	regexp.MustCompile(`(?i)(ghp_[a-zA-Z0-9]{36,})`),
	regexp.MustCompile(`(?i)(AKIA[A-Z0-9]{16})`),
	regexp.MustCompile(`(?i)(AIza[A-Za-z0-9_-]{35})`),

	// Authorization header values
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/-]+=*`),

	// JWTs
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
}

// New creates a redactor with the default patterns.
func New() *Redactor {
	return &Redactor{patterns: defaultPatterns}
}

// AddPattern adds a custom regex pattern.
func (r *Redactor) AddPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.patterns = append(r.patterns, re)
	return nil
}

// AddLiteral masks s verbatim. Blank or very short values are ignored so a
// placeholder credential does not blank out ordinary words.
func (r *Redactor) AddLiteral(s string) *Redactor {
	if s = strings.TrimSpace(s); len(s) >= 8 {
		r.literals = append(r.literals, s)
	}
	return r
}

// Redact replaces all sensitive matches in text with Placeholder.
func (r *Redactor) Redact(text string) string {
	if r == nil {
		return text
	}
	result := text
	for _, lit := range r.literals {
		result = strings.ReplaceAll(result, lit, Placeholder)
	}
	for _, p := range r.patterns {
		result = p.ReplaceAllString(result, Placeholder)
	}
	return result
}

// ContainsSensitive reports whether text matches any literal or pattern.
func (r *Redactor) ContainsSensitive(text string) bool {
	for _, lit := range r.literals {
		if strings.Contains(text, lit) {
			return true
		}
	}
	for _, p := range r.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
