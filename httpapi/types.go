package httpapi

// chatMessage is one entry of an OpenAI-style conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the OpenAI-compatible request body.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

// modelInfo describes one entry of the /v1/models listing.
type modelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

type modelList struct {
	Object string      `json:"object"`
	Data   []modelInfo `json:"data"`
}

// feedbackRequest is the body of POST /v1/feedback.
type feedbackRequest struct {
	Task            string `json:"task"`
	SelectedModel   string `json:"selected_model"`
	Rating          int    `json:"rating"`
	Comments        string `json:"comments,omitempty"`
	ActualModelUsed string `json:"actual_model_used,omitempty"`
}

// statusResponse is the generic success body.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// errorResponse is the detail-keyed error body.
type errorResponse struct {
	Detail string `json:"detail"`
}
