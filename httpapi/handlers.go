package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/agentflow/feedback"
	"github.com/randalmurphal/agentflow/workflow"
)

// handleHealth reports service identity.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
		"version": ServiceVersion,
	})
}

// handleListModels lists the supervisor pseudo-model plus every backend
// model key.
func (s *Server) handleListModels(w http.ResponseWriter, _ *http.Request) {
	now := time.Now().Unix()
	list := modelList{
		Object: "list",
		Data: []modelInfo{
			{ID: SupervisorModel, Object: "model", Created: now, OwnedBy: ServiceName},
		},
	}
	if s.registry != nil {
		for _, key := range s.registry.Keys() {
			list.Data = append(list.Data, modelInfo{
				ID: key, Object: "model", Created: now, OwnedBy: "ollama",
			})
		}
	}
	s.writeJSON(w, http.StatusOK, list)
}

// handleChatCompletions runs the latest user message through the
// pipeline and shapes the result as an OpenAI chat completion.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task := latestUserMessage(req.Messages)
	if task == "" {
		s.writeError(w, http.StatusBadRequest, "No user messages found")
		return
	}

	state, err := s.engine.Process(r.Context(), task, nil)
	if err != nil {
		if errors.Is(err, workflow.ErrEmptyTask) {
			s.writeError(w, http.StatusBadRequest, "Task cannot be empty")
			return
		}
		var stageErr *workflow.StageError
		if errors.As(err, &stageErr) {
			s.logger.Error("workflow failed", "stage", stageErr.Stage, "error", err)
			// Internal prompts and stage wiring stay out of client errors.
			s.writeError(w, http.StatusInternalServerError,
				fmt.Sprintf("Workflow error: stage %s failed", stageErr.Stage))
			return
		}
		s.logger.Error("chat completion failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	content := responseContent(state)
	if req.Model == SupervisorModel {
		content = "Task completed through multi-agent workflow:\n\n" + state.Summary()
	}

	id, err := nanoid.New()
	if err != nil {
		id = state.RunID
	}

	promptTokens := estimateTokens(task)
	completionTokens := estimateTokens(content)

	s.writeJSON(w, http.StatusOK, chatCompletionResponse{
		ID:      "chatcmpl-" + id,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{
			{
				Index:        0,
				Message:      chatMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	})
}

// handleFeedback records a rating for a routed model.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.feedback.Record(req.Task, req.SelectedModel, req.Rating, req.Comments, req.ActualModelUsed)
	if err != nil {
		if errors.Is(err, feedback.ErrInvalidRating) {
			s.writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
			return
		}
		s.logger.Error("could not record feedback", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Error recording feedback")
		return
	}

	s.writeJSON(w, http.StatusOK, statusResponse{
		Status:  "success",
		Message: "Feedback recorded successfully",
	})
}

// handleFeedbackSummary returns the aggregated feedback view.
func (s *Server) handleFeedbackSummary(w http.ResponseWriter, _ *http.Request) {
	summary := s.feedback.Summary()
	if summary.TotalEntries == 0 {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"message":                "No feedback data available yet",
			"total_feedback_entries": 0,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// handleRoutingHistory returns the retained routing decisions, oldest
// first.
func (s *Server) handleRoutingHistory(w http.ResponseWriter, _ *http.Request) {
	data := []any{}
	if s.ledger != nil {
		for _, sel := range s.ledger.History() {
			data = append(data, sel)
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"object": "list",
		"data":   data,
	})
}

// latestUserMessage returns the content of the last user-role message.
func latestUserMessage(messages []chatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

// responseContent picks the client-facing result for non-supervisor
// requests.
func responseContent(state *workflow.State) string {
	if state.ExecutionResult != "" {
		return state.ExecutionResult
	}
	if state.Review != "" {
		return state.Review
	}
	return "Task completed."
}

// estimateTokens approximates token usage from the word count.
func estimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}
