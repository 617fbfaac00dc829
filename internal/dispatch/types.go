// Package dispatch fans prompt agents out to a completion endpoint, one
// goroutine per agent, and collects their answers.
package dispatch

import (
	"time"

	"github.com/leandrotocalini/promptfan/internal/provider/completions"
)

// Message is one role-tagged entry in an agent's conversation.
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// PromptAgent is a named message sequence plus the sampling parameters it
// is sent with. Treat it as a value; nothing mutates it after loading.
type PromptAgent struct {
	Name        string    `json:"name" yaml:"name"`
	Messages    []Message `json:"messages" yaml:"messages"`
	Temperature float64   `json:"temperature" yaml:"temperature"`
	TopP        float64   `json:"top_p" yaml:"top_p"`
	TopK        int       `json:"top_k" yaml:"top_k"`
}

// TokenUsage is the token accounting reported by the endpoint.
type TokenUsage = completions.TokenUsage

// Answer is the outcome of one agent's request.
type Answer struct {
	Name      string        `json:"name"`
	Response  *string       `json:"response"` // nil when absent
	Error     string        `json:"error,omitempty"`
	ErrorType string        `json:"error_type,omitempty"`
	Usage     TokenUsage    `json:"usage"`
	Duration  time.Duration `json:"duration"`
}

// Failed reports whether the request behind this answer failed. ErrorType
// is set on every failure, even when the error text is empty.
func (a Answer) Failed() bool { return a.ErrorType != "" }

// Summary aggregates a completed run.
type Summary struct {
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	TotalTokens int           `json:"total_tokens"`
	WallClock   time.Duration `json:"wall_clock"`
}
