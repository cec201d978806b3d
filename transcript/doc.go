// Package transcript records workflow runs as per-run JSON files.
//
// Core types:
//   - Transcript: A complete run record (metadata + ordered turns)
//   - Manager: Interface for recording and retrieving runs
//   - FileStore: Manager backed by a runs/ directory on disk
//
// A run is started when the engine begins a task, receives one turn per
// prompt and per result as the pipeline advances, and is ended with a
// terminal status when the run completes, fails, or is canceled.
package transcript
