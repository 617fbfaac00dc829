// Package completions provides the HTTP client for an OpenAI-compatible
// chat completions endpoint.
package completions

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for a chat completion. Sampling values are
// always sent, including zeros.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
	TopK        int       `json:"top_k"`
	MaxTokens   int       `json:"max_tokens"`
}

// ChatResponse is the decoded response body. Every field is optional; the
// endpoint may omit any of them.
type ChatResponse struct {
	ID      string     `json:"id,omitempty"`
	Model   string     `json:"model,omitempty"`
	Choices []Choice   `json:"choices,omitempty"`
	Usage   TokenUsage `json:"usage"`
}

// Choice represents one completion choice from the model.
type Choice struct {
	Index        int          `json:"index"`
	Message      *RespMessage `json:"message,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

// RespMessage is an assistant message. Content is nil when the endpoint
// sends null or leaves it out.
type RespMessage struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content"`
}

// TokenUsage tracks token consumption for a single call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Content returns choices[0].message.content, or nil if any level of that
// path is missing.
func (r *ChatResponse) Content() *string {
	if r == nil || len(r.Choices) == 0 {
		return nil
	}
	msg := r.Choices[0].Message
	if msg == nil {
		return nil
	}
	return msg.Content
}
