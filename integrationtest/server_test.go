package integrationtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/randalmurphal/agentflow/feedback"
	"github.com/randalmurphal/agentflow/httpapi"
	"github.com/randalmurphal/agentflow/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServerEndToEnd drives the OpenAI-compatible API over a fully wired
// engine: chat completion, feedback, summary, and routing history.
func TestServerEndToEnd(t *testing.T) {
	mock := mockResponses("plan", "research", "FINAL ANSWER", "review")
	stack := setupStack(t, mock)
	feedbackStore := feedback.New(feedback.Config{})

	server, err := httpapi.NewServer(httpapi.ServerConfig{
		Engine:   stack.engine,
		Feedback: feedbackStore,
		Registry: llm.NewRegistry(nil),
		Ledger:   stack.ledger,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	// Chat completion runs the whole pipeline.
	body := map[string]any{
		"model": "gemma3",
		"messages": []map[string]string{
			{"role": "user", "content": "answer the question"},
		},
	}
	resp := postJSON(t, ts.URL+"/v1/chat/completions", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	decodeJSON(t, resp, &completion)
	require.Len(t, completion.Choices, 1)
	assert.Equal(t, "FINAL ANSWER", completion.Choices[0].Message.Content)
	assert.Equal(t, 4, mock.CallCount())

	// Routing history reflects the four stage selections.
	resp = getJSON(t, ts.URL+"/v1/routing/history")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history struct {
		Data []json.RawMessage `json:"data"`
	}
	decodeJSON(t, resp, &history)
	assert.Len(t, history.Data, 4)

	// Feedback round trip.
	resp = postJSON(t, ts.URL+"/v1/feedback", map[string]any{
		"task":           "answer the question",
		"selected_model": "gemma3",
		"rating":         4,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = getJSON(t, ts.URL+"/v1/feedback/summary")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary struct {
		TotalEntries int `json:"total_feedback_entries"`
	}
	decodeJSON(t, resp, &summary)
	assert.Equal(t, 1, summary.TotalEntries)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
