// Package notify delivers workflow run events to external sinks.
//
// A Notifier receives an Event per run transition (started, completed,
// failed). Implementations include Slack webhooks, generic HTTP
// webhooks, slog logging, and a fan-out combinator. Delivery is best
// effort: the workflow engine logs notifier errors and keeps going.
package notify
