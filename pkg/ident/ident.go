// Package ident normalizes free-text identifiers into the identifier alphabet
// used by Hytale server content (lowercase letters, digits, underscores and colons).
package ident

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NamespacePrefix is the namespace token that item references may carry.
const NamespacePrefix = "hytale:"

var (
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}]+`)
	disallowed    = regexp.MustCompile(`[^a-z0-9_:]`)
	validID       = regexp.MustCompile(`^[a-z0-9_:]+$`)
)

// Sanitize lowercases raw, collapses every whitespace run into a single
// underscore and drops anything outside [a-z0-9_:]. It never fails and is
// idempotent.
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	// Casers carry state, so each call gets its own.
	lower := cases.Lower(language.Und).String(raw)
	lower = whitespaceRun.ReplaceAllString(lower, "_")
	return disallowed.ReplaceAllString(lower, "")
}

// StripNamespacePrefix removes leading "hytale:" tokens from an item reference.
func StripNamespacePrefix(id string) string {
	for strings.HasPrefix(id, NamespacePrefix) {
		id = strings.TrimPrefix(id, NamespacePrefix)
	}
	return id
}

// IsValid reports whether id is non-empty and already in sanitized form.
func IsValid(id string) bool {
	return validID.MatchString(id)
}
