package feedback

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

// snapshot is the persisted document layout. Key names match the wire
// contract consumed by external tooling.
type snapshot struct {
	Entries     []Entry                `json:"feedback_entries"`
	Performance map[string]Performance `json:"model_performance"`
	Stats       map[string]int         `json:"selection_stats"`
}

// load reads the snapshot from disk. Called only from New, before the
// store is shared, so no locking is needed. Any failure degrades to an
// empty store with a logged warning.
func (s *Store) load() {
	if s.path == "" {
		return
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("could not read feedback snapshot, starting empty",
				"path", s.path, "error", err)
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("could not parse feedback snapshot, starting empty",
			"path", s.path, "error", err)
		return
	}

	s.entries = snap.Entries
	if snap.Performance != nil {
		s.performance = snap.Performance
	}
	if snap.Stats != nil {
		s.stats = snap.Stats
	}

	// JSON objects carry no ordering, so insertion order cannot survive a
	// round trip. Rebuild it as sorted keys: stable and documented.
	s.order = make([]string, 0, len(s.performance))
	for k := range s.performance {
		s.order = append(s.order, k)
	}
	sort.Strings(s.order)
}

// persistLocked writes the full snapshot atomically: marshal, write to a
// temp file in the same directory, then rename over the old snapshot.
// Callers must hold s.mu. Failures are logged, never returned — an
// in-flight Record must not crash on a disk problem.
func (s *Store) persistLocked() {
	if s.path == "" {
		return
	}

	snap := snapshot{
		Entries:     s.entries,
		Performance: s.performance,
		Stats:       s.stats,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.logger.Warn("could not marshal feedback snapshot", "error", err)
		return
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.logger.Warn("could not create feedback directory", "path", dir, "error", err)
		return
	}

	tmp, err := os.CreateTemp(dir, ".feedback-*.json")
	if err != nil {
		s.logger.Warn("could not create temp snapshot", "error", err)
		return
	}

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmp.Name())
		s.logger.Warn("could not write feedback snapshot", "write_error", werr, "close_error", cerr)
		return
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		s.logger.Warn("could not replace feedback snapshot", "path", s.path, "error", err)
	}
}
