package router

import (
	"fmt"
	"log/slog"
)

// TaskSnippetLen is how much task text is retained in a selection record.
const TaskSnippetLen = 100

// Default model keys for each routing concern. These match the default
// model registry.
const (
	DefaultFastModel          = "phi3"
	DefaultMultilingualModel  = "qwen3"
	DefaultCodingModel        = "gemma3"
	DefaultCodingComplexModel = "qwen3"
	DefaultFallbackModel      = "gemma3"
)

// DefaultCriteria maps complexity tiers to candidate model keys, best
// candidate first.
func DefaultCriteria() map[Complexity][]string {
	return map[Complexity][]string{
		ComplexitySimple:   {"phi3"},
		ComplexityModerate: {"gemma3"},
		ComplexityCoding:   {"gemma3", "qwen3"},
		ComplexityComplex:  {"qwen3", "gemma3"},
	}
}

// KnownModels reports whether a model key is configured and available.
// llm.Registry satisfies this.
type KnownModels interface {
	Known(key string) bool
}

// Config configures a Router. Zero-value fields fall back to the defaults
// above.
type Config struct {
	// FastModel handles high-urgency tasks.
	FastModel string

	// MultilingualModel handles tasks needing multilingual capability.
	MultilingualModel string

	// CodingModel handles coding tasks; CodingComplexModel handles coding
	// tasks whose complexity was overridden to complex.
	CodingModel        string
	CodingComplexModel string

	// FallbackModel is used when a complexity tier has no criteria entry.
	FallbackModel string

	// Criteria maps complexity tiers to candidate model keys.
	Criteria map[Complexity][]string

	// Known validates resolved model keys. If nil, no validation is done.
	Known KnownModels

	// Ledger receives one Selection per Select call. If nil, selections
	// are not recorded.
	Ledger *Ledger

	// Logger logs selections at debug level. Defaults to slog.Default().
	Logger *slog.Logger
}

// Router maps tasks to model keys via an ordered, first-match-wins
// priority table:
//
//  1. high urgency        -> FastModel
//  2. multilingual        -> MultilingualModel
//  3. coding              -> CodingComplexModel if complexity is complex,
//     else CodingModel
//  4. complexity criteria -> first candidate for the tier, else FallbackModel
//
// Selection is deterministic: the same characteristics always resolve to
// the same key. Routers are safe for concurrent use; all mutable state
// lives in the Ledger.
type Router struct {
	fast          string
	multilingual  string
	coding        string
	codingComplex string
	fallback      string
	criteria      map[Complexity][]string
	known         KnownModels
	ledger        *Ledger
	logger        *slog.Logger
}

// New creates a Router with the given configuration.
func New(cfg Config) *Router {
	r := &Router{
		fast:          cfg.FastModel,
		multilingual:  cfg.MultilingualModel,
		coding:        cfg.CodingModel,
		codingComplex: cfg.CodingComplexModel,
		fallback:      cfg.FallbackModel,
		criteria:      cfg.Criteria,
		known:         cfg.Known,
		ledger:        cfg.Ledger,
		logger:        cfg.Logger,
	}

	if r.fast == "" {
		r.fast = DefaultFastModel
	}
	if r.multilingual == "" {
		r.multilingual = DefaultMultilingualModel
	}
	if r.coding == "" {
		r.coding = DefaultCodingModel
	}
	if r.codingComplex == "" {
		r.codingComplex = DefaultCodingComplexModel
	}
	if r.fallback == "" {
		r.fallback = DefaultFallbackModel
	}
	if r.criteria == nil {
		r.criteria = DefaultCriteria()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Select classifies the task and returns the model key that should handle
// it. The decision is appended to the ledger. The caller performs the
// actual model invocation.
//
// Returns ErrUnknownModel if the resolved key is not configured.
func (r *Router) Select(task string, ov *Overrides) (string, error) {
	ch := Classify(task, ov)
	key := r.resolve(ch)

	if r.known != nil && !r.known.Known(key) {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, key)
	}

	if r.ledger != nil {
		r.ledger.Append(Selection{
			TaskSnippet:     Snippet(task, TaskSnippetLen),
			Characteristics: ch,
			ModelKey:        key,
		})
	}

	r.logger.Debug("model selected",
		"model", key,
		"complexity", ch.Complexity,
		"urgency", ch.Urgency,
		"coding", ch.RequiresCoding,
		"multilingual", ch.RequiresMultilingual,
	)

	return key, nil
}

// resolve applies the priority table to already-computed characteristics.
func (r *Router) resolve(ch Characteristics) string {
	switch {
	case ch.Urgency == UrgencyHigh:
		return r.fast
	case ch.RequiresMultilingual:
		return r.multilingual
	case ch.RequiresCoding:
		if ch.Complexity == ComplexityComplex {
			return r.codingComplex
		}
		return r.coding
	}

	if candidates, ok := r.criteria[ch.Complexity]; ok && len(candidates) > 0 {
		return candidates[0]
	}
	return r.fallback
}

// Snippet truncates s to at most n characters for logging and record
// keeping. Truncation is by rune, so a multi-byte character is never
// split into invalid UTF-8.
func Snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
