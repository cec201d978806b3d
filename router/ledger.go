package router

import "sync"

// =============================================================================
// Selection Ledger
// =============================================================================

// Selection records one routing decision. Records are owned by the Ledger
// and never mutated after append.
type Selection struct {
	// TaskSnippet is the task text truncated to 100 characters.
	TaskSnippet string `json:"task"`

	// Characteristics is a snapshot of the classification that drove
	// the selection.
	Characteristics Characteristics `json:"characteristics"`

	// ModelKey is the selected model key.
	ModelKey string `json:"selectedModel"`

	// Index is the creation order of this record, assigned by the ledger.
	Index int `json:"index"`
}

// DefaultLedgerCapacity bounds the ledger when no capacity is configured.
const DefaultLedgerCapacity = 1000

// LedgerConfig configures a Ledger.
type LedgerConfig struct {
	// Capacity is the maximum number of records retained. When the ledger
	// is full the oldest record is evicted. Zero means DefaultLedgerCapacity;
	// negative means unbounded.
	Capacity int
}

func (c LedgerConfig) capacity() int {
	if c.Capacity == 0 {
		return DefaultLedgerCapacity
	}
	if c.Capacity < 0 {
		return 0 // unbounded
	}
	return c.Capacity
}

// Ledger is an append-only, process-wide log of routing decisions. It is
// safe for concurrent use; History returns a snapshot copy so callers
// never observe later mutations.
//
// The bound is a design choice of this implementation, not an inherited
// contract: old records are evicted FIFO once Capacity is exceeded.
type Ledger struct {
	mu       sync.Mutex
	records  []Selection
	next     int // next creation index, survives eviction and Clear
	capacity int
}

// NewLedger creates a Ledger with the given configuration.
func NewLedger(cfg LedgerConfig) *Ledger {
	return &Ledger{capacity: cfg.capacity()}
}

// Append adds a selection record, assigning its creation index.
func (l *Ledger) Append(sel Selection) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sel.Index = l.next
	l.next++

	l.records = append(l.records, sel)
	if l.capacity > 0 && len(l.records) > l.capacity {
		l.records = l.records[len(l.records)-l.capacity:]
	}
}

// History returns a snapshot copy of all retained records, oldest first.
func (l *Ledger) History() []Selection {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Selection, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of retained records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Clear removes all records. Creation indexes keep counting from where
// they left off.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}
