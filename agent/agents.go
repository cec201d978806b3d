package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/randalmurphal/agentflow/router"
)

// =============================================================================
// Planner
// =============================================================================

// Planner breaks tasks into ordered, actionable steps.
type Planner struct {
	*Agent
}

// NewPlanner creates the planning agent.
func NewPlanner(cfg Config) (*Planner, error) {
	if cfg.Name == "" {
		cfg.Name = "Planner"
	}
	if err := loadSystemPrompt(&cfg, "planner"); err != nil {
		return nil, err
	}
	base, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Planner{Agent: base}, nil
}

// Capabilities describes what the planner does.
func (p *Planner) Capabilities() []string {
	return []string{
		"Task decomposition",
		"Step-by-step planning",
		"Dependency analysis",
		"Execution order optimization",
	}
}

// CreatePlan produces a step-by-step plan for the task.
func (p *Planner) CreatePlan(ctx context.Context, task string) (string, error) {
	prompt := fmt.Sprintf(`Create a detailed plan for the following task:

Task: %s

Provide a step-by-step plan that breaks down this task into actionable steps.
Include any dependencies, prerequisites, or considerations.`, task)

	return p.Process(ctx, prompt, nil)
}

// =============================================================================
// Researcher
// =============================================================================

// Researcher gathers and synthesizes information.
type Researcher struct {
	*Agent
}

// NewResearcher creates the research agent.
func NewResearcher(cfg Config) (*Researcher, error) {
	if cfg.Name == "" {
		cfg.Name = "Researcher"
	}
	if err := loadSystemPrompt(&cfg, "researcher"); err != nil {
		return nil, err
	}
	base, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Researcher{Agent: base}, nil
}

// Capabilities describes what the researcher does.
func (r *Researcher) Capabilities() []string {
	return []string{
		"Information gathering",
		"Data synthesis",
		"Fact-checking",
		"Source analysis",
		"Report generation",
	}
}

// Research investigates a topic, optionally answering specific questions.
func (r *Researcher) Research(ctx context.Context, topic string, questions []string) (string, error) {
	var prompt string
	if len(questions) > 0 {
		lines := make([]string, len(questions))
		for i, q := range questions {
			lines[i] = "- " + q
		}
		prompt = fmt.Sprintf(`Research the following topic and answer the specific questions:

Topic: %s

Questions:
%s

Provide comprehensive answers based on your knowledge.`, topic, strings.Join(lines, "\n"))
	} else {
		prompt = fmt.Sprintf(`Research and provide information about the following topic:

Topic: %s

Provide a comprehensive overview, key points, and relevant details.`, topic)
	}

	return r.Process(ctx, prompt, nil)
}

// =============================================================================
// Executor
// =============================================================================

// Executor performs tasks and generates outputs.
type Executor struct {
	*Agent
}

// NewExecutor creates the execution agent.
func NewExecutor(cfg Config) (*Executor, error) {
	if cfg.Name == "" {
		cfg.Name = "Executor"
	}
	if err := loadSystemPrompt(&cfg, "executor"); err != nil {
		return nil, err
	}
	base, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Executor{Agent: base}, nil
}

// Capabilities describes what the executor does.
func (e *Executor) Capabilities() []string {
	return []string{
		"Code generation",
		"Content creation",
		"Task execution",
		"Output generation",
		"Quality assurance",
	}
}

// Execute performs the task. The coding characteristic is pinned from the
// task text rather than re-derived from the synthesized prompt, which
// carries planner wording the classifier would misread.
func (e *Executor) Execute(ctx context.Context, task, taskContext string) (string, error) {
	var prompt string
	if taskContext != "" {
		prompt = fmt.Sprintf(`Execute the following task:

Task: %s

Context/Requirements:
%s

Provide the complete output or result.`, task, taskContext)
	} else {
		prompt = fmt.Sprintf(`Execute the following task:

Task: %s

Provide the complete output or result.`, task)
	}

	requiresCoding := strings.Contains(strings.ToLower(task), "code")
	ov := &router.Overrides{RequiresCoding: &requiresCoding}

	return e.Process(ctx, prompt, ov)
}

// =============================================================================
// Critic
// =============================================================================

// Critic reviews outputs and provides feedback.
type Critic struct {
	*Agent
}

// NewCritic creates the review agent.
func NewCritic(cfg Config) (*Critic, error) {
	if cfg.Name == "" {
		cfg.Name = "Critic"
	}
	if err := loadSystemPrompt(&cfg, "critic"); err != nil {
		return nil, err
	}
	base, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Critic{Agent: base}, nil
}

// Capabilities describes what the critic does.
func (c *Critic) Capabilities() []string {
	return []string{
		"Quality assessment",
		"Error detection",
		"Feedback generation",
		"Requirement verification",
		"Improvement suggestions",
	}
}

// Review evaluates an output, optionally against requirements.
func (c *Critic) Review(ctx context.Context, output, requirements string) (string, error) {
	var prompt string
	if requirements != "" {
		prompt = fmt.Sprintf(`Review the following output against the requirements:

Output:
%s

Requirements:
%s

Provide a comprehensive review including:
1. Quality assessment
2. Requirement compliance check
3. Identified issues
4. Suggestions for improvement`, output, requirements)
	} else {
		prompt = fmt.Sprintf(`Review the following output:

Output:
%s

Provide a comprehensive review including:
1. Quality assessment
2. Strengths
3. Areas for improvement
4. Specific suggestions`, output)
	}

	return c.Process(ctx, prompt, nil)
}
