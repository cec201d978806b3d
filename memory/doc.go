// Package memory provides long-term conversation recall for agents.
//
// Core types:
//   - Recaller: Interface agents use to pull relevant prior context
//   - KeywordStore: In-memory store scored by keyword overlap, with
//     optional JSON file persistence
//
// KeywordStore is deliberately simple. It stands in for a vector store:
// retrieval quality is bounded by term overlap, which is enough for
// surfacing recent related runs without an embedding backend.
package memory
