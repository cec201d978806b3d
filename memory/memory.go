package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultRecallK is how many prior conversations GetRelevantContext
// retrieves when the caller passes k <= 0.
const DefaultRecallK = 3

// Recaller retrieves prior context relevant to a query. An empty string
// with a nil error means nothing relevant was found.
type Recaller interface {
	GetRelevantContext(ctx context.Context, query string, k int) (string, error)
}

// Record is one stored conversation. Records are owned by the store and
// never mutated after Add.
type Record struct {
	Task     string            `json:"task"`
	Response string            `json:"response"`
	Meta     map[string]string `json:"meta,omitempty"`
	AddedAt  time.Time         `json:"added_at"`
}

// KeywordStoreConfig configures a KeywordStore.
type KeywordStoreConfig struct {
	// Path is the snapshot file. Empty disables persistence (in-memory only).
	Path string

	// Logger reports non-fatal persistence problems.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// KeywordStore is an in-memory conversation store retrieved by keyword
// overlap. It implements Recaller and is safe for concurrent use.
type KeywordStore struct {
	mu      sync.Mutex
	path    string
	logger  *slog.Logger
	records []Record
}

// NewKeywordStore creates a KeywordStore, loading any existing snapshot
// from cfg.Path. A missing or unreadable snapshot is not an error: the
// store starts empty and logs a warning.
func NewKeywordStore(cfg KeywordStoreConfig) *KeywordStore {
	s := &KeywordStore{
		path:   cfg.Path,
		logger: cfg.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.load()
	return s
}

// Add stores one task/response exchange.
func (s *KeywordStore) Add(task, response string, meta map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, Record{
		Task:     task,
		Response: response,
		Meta:     meta,
		AddedAt:  time.Now().UTC(),
	})
	s.persistLocked()
}

// Search returns up to k records scored by keyword overlap with the
// query, best first. Records sharing no terms with the query are never
// returned. Ties keep insertion order, oldest first.
func (s *KeywordStore) Search(query string, k int) []Record {
	if k <= 0 {
		k = DefaultRecallK
	}
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type scored struct {
		rec   Record
		score int
		idx   int
	}
	var hits []scored
	for i, rec := range s.records {
		score := overlap(terms, tokenize(rec.Task+" "+rec.Response))
		if score > 0 {
			hits = append(hits, scored{rec: rec, score: score, idx: i})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].idx < hits[b].idx
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]Record, len(hits))
	for i, h := range hits {
		out[i] = h.rec
	}
	return out
}

// GetRelevantContext implements Recaller: matched records are formatted
// as numbered "Previous conversation" blocks.
func (s *KeywordStore) GetRelevantContext(_ context.Context, query string, k int) (string, error) {
	results := s.Search(query, k)
	if len(results) == 0 {
		return "", nil
	}

	parts := make([]string, len(results))
	for i, rec := range results {
		parts[i] = fmt.Sprintf("Previous conversation %d:\nTask: %s\nResponse: %s",
			i+1, rec.Task, rec.Response)
	}
	return strings.Join(parts, "\n\n"), nil
}

// Len returns the number of stored records.
func (s *KeywordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Clear removes all records and rewrites the snapshot.
func (s *KeywordStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.persistLocked()
}

// tokenize lowercases and splits on non-alphanumeric runes, dropping
// duplicates and trivially short terms.
func tokenize(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	terms := make(map[string]bool, len(fields))
	for _, f := range fields {
		if len(f) >= 2 {
			terms[f] = true
		}
	}
	return terms
}

// overlap counts query terms present in the document terms.
func overlap(query, doc map[string]bool) int {
	n := 0
	for t := range query {
		if doc[t] {
			n++
		}
	}
	return n
}

// memorySnapshot is the persisted document layout.
type memorySnapshot struct {
	Records []Record `json:"records"`
}

// load reads the snapshot from disk. Called only from NewKeywordStore,
// before the store is shared, so no locking is needed.
func (s *KeywordStore) load() {
	if s.path == "" {
		return
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("could not read memory snapshot, starting empty",
				"path", s.path, "error", err)
		}
		return
	}

	var snap memorySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("could not parse memory snapshot, starting empty",
			"path", s.path, "error", err)
		return
	}
	s.records = snap.Records
}

// persistLocked writes the full snapshot atomically. Callers must hold
// s.mu. Failures are logged, never returned.
func (s *KeywordStore) persistLocked() {
	if s.path == "" {
		return
	}

	data, err := json.MarshalIndent(memorySnapshot{Records: s.records}, "", "  ")
	if err != nil {
		s.logger.Warn("could not marshal memory snapshot", "error", err)
		return
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.logger.Warn("could not create memory directory", "path", dir, "error", err)
		return
	}

	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		s.logger.Warn("could not create temp snapshot", "error", err)
		return
	}

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmp.Name())
		s.logger.Warn("could not write memory snapshot", "write_error", werr, "close_error", cerr)
		return
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		s.logger.Warn("could not replace memory snapshot", "path", s.path, "error", err)
	}
}
