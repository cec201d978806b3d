package feedback

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TaskSnippetLen is how much task text is retained in a feedback entry.
const TaskSnippetLen = 200

// MinRatingsForBest is the minimum number of ratings a model needs before
// it can be considered by BestModel.
const MinRatingsForBest = 3

// Entry is one recorded rating. Entries are owned by the Store and never
// mutated after append.
type Entry struct {
	Timestamp       time.Time `json:"timestamp"`
	TaskSnippet     string    `json:"task"`
	SelectedModel   string    `json:"selected_model"`
	ActualModelUsed string    `json:"actual_model_used"`
	Rating          int       `json:"rating"`
	Comments        string    `json:"comments,omitempty"`
}

// Performance is the running aggregate for one model key.
type Performance struct {
	Count         int     `json:"count"`
	SumRatings    int     `json:"sum_ratings"`
	AverageRating float64 `json:"average_rating"`
}

// Summary is a read-only aggregate view of all feedback.
type Summary struct {
	TotalEntries       int                    `json:"total_feedback_entries"`
	PerformanceByModel map[string]Performance `json:"model_performance"`
	SelectionStats     map[string]int         `json:"selection_stats"`
}

// Config configures a Store.
type Config struct {
	// Path is the snapshot file. Empty disables persistence (in-memory only).
	Path string

	// Logger reports non-fatal persistence problems.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Store ingests rating events and answers performance queries. It is safe
// for concurrent use: a single mutex serializes every mutation, including
// the read-modify-write behind each aggregate update.
type Store struct {
	mu          sync.Mutex
	path        string
	logger      *slog.Logger
	entries     []Entry
	performance map[string]Performance
	stats       map[string]int

	// order tracks the first-feedback insertion order of model keys so
	// BestModel tie-breaking is stable and documented.
	order []string
}

// New creates a Store, loading any existing snapshot from cfg.Path.
// A missing or unreadable snapshot is not an error: the store starts
// empty and logs a warning.
func New(cfg Config) *Store {
	s := &Store{
		path:        cfg.Path,
		logger:      cfg.Logger,
		performance: make(map[string]Performance),
		stats:       make(map[string]int),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.load()
	return s
}

// Record validates and ingests one rating event. The aggregate for
// actualModel (or selectedModel when actualModel is empty) is updated with
// an incremental mean, and the full snapshot is persisted.
//
// Returns ErrInvalidRating, without mutating anything, when rating is
// outside [1,5].
func (s *Store) Record(task, selectedModel string, rating int, comments, actualModel string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}

	if actualModel == "" {
		actualModel = selectedModel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, Entry{
		Timestamp:       time.Now(),
		TaskSnippet:     snippet(task, TaskSnippetLen),
		SelectedModel:   selectedModel,
		ActualModelUsed: actualModel,
		Rating:          rating,
		Comments:        comments,
	})

	perf, seen := s.performance[actualModel]
	if !seen {
		s.order = append(s.order, actualModel)
	}
	perf.SumRatings += rating
	perf.Count++
	perf.AverageRating = float64(perf.SumRatings) / float64(perf.Count)
	s.performance[actualModel] = perf

	s.stats[fmt.Sprintf("%s_%d", selectedModel, rating)]++

	s.persistLocked()
	return nil
}

// Performance returns the aggregate for a model key. Unknown keys yield a
// zeroed aggregate (count 0, average 0.0) rather than an error.
func (s *Store) Performance(modelKey string) Performance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.performance[modelKey]
}

// BestModel returns the model key with the highest average rating among
// models with at least MinRatingsForBest ratings. Ties go to the model
// whose feedback was first recorded. ok is false when no model qualifies.
func (s *Store) BestModel() (key string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	best := ""
	bestRating := 0.0
	for _, k := range s.order {
		perf := s.performance[k]
		if perf.Count < MinRatingsForBest {
			continue
		}
		if perf.AverageRating > bestRating {
			bestRating = perf.AverageRating
			best = k
		}
	}

	return best, best != ""
}

// Summary returns a copy of the aggregate view. Mutating the result does
// not affect the store.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	perf := make(map[string]Performance, len(s.performance))
	for k, v := range s.performance {
		perf[k] = v
	}
	stats := make(map[string]int, len(s.stats))
	for k, v := range s.stats {
		stats[k] = v
	}

	return Summary{
		TotalEntries:       len(s.entries),
		PerformanceByModel: perf,
		SelectionStats:     stats,
	}
}

// Entries returns a snapshot copy of all recorded entries, oldest first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear discards all feedback and persists the empty snapshot.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.performance = make(map[string]Performance)
	s.stats = make(map[string]int)
	s.order = nil
	s.persistLocked()
}

// snippet truncates by rune so multi-byte characters survive intact.
func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
