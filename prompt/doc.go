// Package prompt provides prompt template loading and management.
//
// Core types:
//   - Loader: Loads prompt templates from project directories or embedded resources
//   - Builder: Assembles multi-section prompts programmatically
//
// The embedded defaults carry the system prompts for the four pipeline
// agents (planner, researcher, executor, critic). Projects may override
// any of them by dropping a same-named .txt file under .agentflow/prompts/.
//
// Example usage:
//
//	loader := prompt.NewLoader(projectDir)
//	system, err := loader.Load("planner")
//	body, err := loader.LoadWithVars("planner", map[string]any{
//	    "task": "Summarize the quarterly report",
//	})
package prompt
