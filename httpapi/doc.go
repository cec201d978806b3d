// Package httpapi exposes the agent pipeline over an OpenAI-compatible
// HTTP API.
//
// Endpoints:
//   - GET  /                    — health check
//   - GET  /v1/models           — supervisor pseudo-model plus backend models
//   - POST /v1/chat/completions — run the latest user message through the pipeline
//   - POST /v1/feedback         — record a model rating
//   - GET  /v1/feedback/summary — aggregated feedback
//   - GET  /v1/routing/history  — recent routing decisions
//
// The server is unauthenticated by default; configuring an API key hash
// or JWT secret enables bearer auth on the /v1 endpoints.
package httpapi
