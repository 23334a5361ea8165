// Package policy holds the closed set of response policies for the study.
// Each variant owns its instruction template and generation parameters;
// adding a variant is an edit to the table below, never a branch elsewhere.
package policy

import "strings"

// Variant discriminates the behavioral contracts. A conversation's variant
// is fixed at creation and never changes.
type Variant string

const (
	Companion    Variant = "companion"
	Neutral      Variant = "neutral"
	NonCompanion Variant = "non-companion"
)

// Route is the URL path segment for the variant.
func (v Variant) Route() string {
	if v == NonCompanion {
		return "noncompanion"
	}
	return string(v)
}

// Parse accepts either the canonical variant name or its route form.
func Parse(s string) (Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "companion":
		return Companion, true
	case "neutral":
		return Neutral, true
	case "non-companion", "noncompanion":
		return NonCompanion, true
	default:
		return "", false
	}
}

// Variants returns the closed set in registration order.
func Variants() []Variant {
	return []Variant{Companion, Neutral, NonCompanion}
}

// Policy couples a variant's instruction template with its generation
// configuration.
type Policy struct {
	Variant         Variant
	Instructions    string
	Model           string
	Temperature     float64
	MaxOutputTokens int64
}

var registry = map[Variant]Policy{
	Companion: {
		Variant:         Companion,
		Instructions:    companionInstructions,
		Model:           "gpt-4o-mini",
		Temperature:     0.8,
		MaxOutputTokens: 600,
	},
	Neutral: {
		Variant:         Neutral,
		Instructions:    neutralInstructions,
		Model:           "gpt-4o-mini",
		Temperature:     0.5,
		MaxOutputTokens: 600,
	},
	NonCompanion: {
		Variant:         NonCompanion,
		Instructions:    nonCompanionInstructions,
		Model:           "gpt-4o-mini",
		Temperature:     0.2,
		MaxOutputTokens: 600,
	},
}

// Lookup resolves a variant to its policy.
func Lookup(v Variant) (Policy, bool) {
	p, ok := registry[v]
	return p, ok
}
