// Package router selects backend language models for tasks.
//
// A task is classified into a fixed set of Characteristics (length,
// complexity, coding/multilingual needs, urgency), and an ordered
// priority table maps those characteristics to a model key. Every
// selection is appended to a Ledger so routing decisions can be
// inspected and correlated with feedback later.
//
// The Router never invokes a model; it only answers "which model key
// should handle this task". Callers perform the actual invocation.
package router
