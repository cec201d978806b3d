// Package feedback records human ratings of model selections and maintains
// running per-model performance aggregates.
//
// The Store is an explicitly constructed, mutex-guarded object owned by the
// orchestrating service. Every successful Record call persists the full
// snapshot to a JSON file atomically (write to a temp file, then rename),
// so a partially written snapshot is never observable. Persistence problems
// are logged and degrade to in-memory operation; they never fail a call.
package feedback
