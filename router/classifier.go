package router

import "strings"

// =============================================================================
// Task Characteristics
// =============================================================================

// Complexity is the complexity tier of a task.
type Complexity string

// Complexity tiers, from trivial to specialist.
const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
	ComplexityCoding   Complexity = "coding"
)

// Urgency indicates how quickly a task needs an answer.
type Urgency string

// Urgency levels.
const (
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

// Characteristics is the derived classification of a task. It is computed
// once per call and never mutated afterwards.
type Characteristics struct {
	Length               int        `json:"length"`
	Complexity           Complexity `json:"complexity"`
	RequiresCoding       bool       `json:"requiresCoding"`
	RequiresMultilingual bool       `json:"requiresMultilingual"`
	Urgency              Urgency    `json:"urgency"`
}

// Overrides replaces computed characteristic fields. A nil field is unset;
// a set field wins verbatim over the computed value. Using explicit pointer
// fields keeps the merge statically checkable instead of an open-ended map.
type Overrides struct {
	Length               *int
	Complexity           *Complexity
	RequiresCoding       *bool
	RequiresMultilingual *bool
	Urgency              *Urgency
}

// Keyword sets driving classification. Matching is plain substring search
// over the lower-cased task text.
var (
	codingKeywords       = []string{"code", "function", "class", "python", "javascript", "api", "debug", "implement"}
	multilingualKeywords = []string{"translate", "language", "multilingual", "spanish", "french", "german"}
	urgencyKeywords      = []string{"urgent", "fast", "quick"}
)

// Classify derives Characteristics from raw task text. It is a pure
// function: no I/O, no side effects, deterministic for a given input.
//
// The coding-keyword check takes precedence over the length-based
// complexity rule: any task mentioning a coding keyword is classified
// ComplexityCoding regardless of length. Overrides are applied last and
// always win.
func Classify(task string, ov *Overrides) Characteristics {
	lower := strings.ToLower(task)

	ch := Characteristics{
		Length:     len(task),
		Complexity: ComplexitySimple,
		Urgency:    UrgencyNormal,
	}

	if containsAny(lower, codingKeywords) {
		ch.RequiresCoding = true
		ch.Complexity = ComplexityCoding
	}

	if containsAny(lower, multilingualKeywords) {
		ch.RequiresMultilingual = true
	}

	if !ch.RequiresCoding {
		switch {
		case ch.Length > 500:
			ch.Complexity = ComplexityComplex
		case ch.Length > 200:
			ch.Complexity = ComplexityModerate
		}
	}

	if containsAny(lower, urgencyKeywords) {
		ch.Urgency = UrgencyHigh
	}

	ch.apply(ov)
	return ch
}

// apply merges overrides into the computed characteristics.
func (c *Characteristics) apply(ov *Overrides) {
	if ov == nil {
		return
	}
	if ov.Length != nil {
		c.Length = *ov.Length
	}
	if ov.Complexity != nil {
		c.Complexity = *ov.Complexity
	}
	if ov.RequiresCoding != nil {
		c.RequiresCoding = *ov.RequiresCoding
	}
	if ov.RequiresMultilingual != nil {
		c.RequiresMultilingual = *ov.RequiresMultilingual
	}
	if ov.Urgency != nil {
		c.Urgency = *ov.Urgency
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
