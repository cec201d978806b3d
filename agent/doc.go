// Package agent implements the four pipeline agents: planner, researcher,
// executor, and critic.
//
// Core types:
//   - Agent: Shared chat loop with model routing, bounded conversation
//     history, and optional memory recall
//   - Planner, Researcher, Executor, Critic: Specialized agents with
//     embedded system prompts and task-shaped helper methods
//
// Example usage:
//
//	planner, err := agent.NewPlanner(agent.Config{
//	    Router: rt,
//	    Client: client,
//	})
//	plan, err := planner.CreatePlan(ctx, "add rate limiting to the API")
package agent
