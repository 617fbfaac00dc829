package dispatch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leandrotocalini/promptfan/internal/provider/completions"
)

// DefaultMaxTokens caps the generated length of every answer.
const DefaultMaxTokens = 500

// Completer makes chat completion calls. Satisfied by *completions.Client.
type Completer interface {
	Complete(ctx context.Context, req completions.ChatRequest) (*completions.ChatResponse, error)
}

// Dispatcher sends prompt agents to a Completer.
type Dispatcher struct {
	completer   Completer
	model       string
	maxTokens   int
	concurrency int
	logger      *slog.Logger
	observer    func(Answer)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxTokens overrides DefaultMaxTokens.
func WithMaxTokens(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxTokens = n
		}
	}
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithConcurrency caps the number of in-flight requests. Zero or less
// means one goroutine per agent with no cap.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		d.concurrency = n
	}
}

// WithObserver registers a callback invoked once per answer, from the
// goroutine that produced it.
func WithObserver(fn func(Answer)) Option {
	return func(d *Dispatcher) {
		d.observer = fn
	}
}

// New creates a Dispatcher that asks model through c.
func New(c Completer, model string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		completer: c,
		model:     model,
		maxTokens: DefaultMaxTokens,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends one agent's request and records the outcome. Failures are
// folded into the returned Answer, never returned as errors. The answer is
// appended to into when into is non-nil.
func (d *Dispatcher) Dispatch(ctx context.Context, agent PromptAgent, into *Results) Answer {
	start := time.Now()

	resp, err := d.completer.Complete(ctx, d.buildRequest(agent))
	duration := time.Since(start)

	answer := Answer{
		Name:     agent.Name,
		Duration: duration,
	}

	if err != nil {
		answer.ErrorType = completions.TypeOf(err).String()
		answer.Error = err.Error()
		if answer.Error == "" {
			answer.Error = answer.ErrorType + " error"
		}
		d.logger.Warn("agent request failed",
			"agent", agent.Name,
			"model", d.model,
			"error_type", answer.ErrorType,
			"error", err,
			"duration", duration,
		)
	} else {
		// A nil response with a nil error is an absent answer.
		answer.Response = resp.Content()
		if resp != nil {
			answer.Usage = resp.Usage
		}
		d.logger.Info("agent completed",
			"agent", agent.Name,
			"model", d.model,
			"tokens", answer.Usage.TotalTokens,
			"has_response", answer.Response != nil,
			"duration", duration,
		)
	}

	if into != nil {
		into.Append(answer)
	}
	if d.observer != nil {
		d.observer(answer)
	}

	return answer
}

// RunAll dispatches every agent concurrently and waits for all of them.
// The returned collection holds exactly len(agents) answers in completion
// order.
func (d *Dispatcher) RunAll(ctx context.Context, agents []PromptAgent) *Results {
	results := NewResults()

	d.logger.Info("dispatching agents",
		"run_id", results.RunID,
		"agents", len(agents),
		"model", d.model,
	)

	// Tasks never return errors; a failed agent must not cancel its siblings.
	var g errgroup.Group
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}

	for _, agent := range agents {
		g.Go(func() error {
			d.Dispatch(ctx, agent, results)
			return nil
		})
	}

	_ = g.Wait()

	s := results.Summary()
	d.logger.Info("run finished",
		"run_id", results.RunID,
		"succeeded", s.Succeeded,
		"failed", s.Failed,
		"tokens", s.TotalTokens,
		"wall_clock", s.WallClock,
	)

	return results
}

func (d *Dispatcher) buildRequest(agent PromptAgent) completions.ChatRequest {
	msgs := make([]completions.Message, len(agent.Messages))
	for i, m := range agent.Messages {
		msgs[i] = completions.Message{Role: m.Role, Content: m.Content}
	}
	return completions.ChatRequest{
		Model:       d.model,
		Messages:    msgs,
		Temperature: agent.Temperature,
		TopP:        agent.TopP,
		TopK:        agent.TopK,
		MaxTokens:   d.maxTokens,
	}
}
