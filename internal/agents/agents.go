// Package agents defines, loads, and validates the prompt agents a run
// dispatches.
package agents

import (
	"fmt"
	"strings"

	"github.com/leandrotocalini/promptfan/internal/dispatch"
)

// DefaultQuestion is the user prompt shared by the built-in agents.
const DefaultQuestion = "what is the capital of France?"

// Builtin returns the default agent set: the same question asked with three
// different answer-length instructions.
func Builtin() []dispatch.PromptAgent {
	return []dispatch.PromptAgent{
		withSystem("1 word response", "respond to this question with 1 word", DefaultQuestion),
		withSystem("2 word response", "respond to this question with 2 words", DefaultQuestion),
		withSystem("1 sentence response", "respond to this question with 1 sentence", DefaultQuestion),
	}
}

func withSystem(name, system, question string) dispatch.PromptAgent {
	return dispatch.PromptAgent{
		Name: name,
		Messages: []dispatch.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: question},
		},
		Temperature: 0,
		TopP:        1,
		TopK:        1,
	}
}

// Validate checks every agent and reports all problems at once.
func Validate(list []dispatch.PromptAgent) error {
	if len(list) == 0 {
		return fmt.Errorf("no agents defined")
	}

	var errs []string
	seen := make(map[string]bool)

	for i, a := range list {
		label := a.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			errs = append(errs, fmt.Sprintf("agent %s: name cannot be empty", label))
		} else if seen[a.Name] {
			errs = append(errs, fmt.Sprintf("agent %q: duplicate name", a.Name))
		}
		seen[a.Name] = true

		if len(a.Messages) == 0 {
			errs = append(errs, fmt.Sprintf("agent %s: no messages", quote(label)))
		}
		for j, m := range a.Messages {
			if strings.TrimSpace(m.Role) == "" {
				errs = append(errs, fmt.Sprintf("agent %s: message %d has empty role", quote(label), j+1))
			}
			if m.Content == "" {
				errs = append(errs, fmt.Sprintf("agent %s: message %d has empty content", quote(label), j+1))
			}
		}

		if a.Temperature < 0 {
			errs = append(errs, fmt.Sprintf("agent %s: temperature must be >= 0", quote(label)))
		}
		if a.TopP < 0 || a.TopP > 1 {
			errs = append(errs, fmt.Sprintf("agent %s: top_p must be within [0, 1]", quote(label)))
		}
		if a.TopK < 0 {
			errs = append(errs, fmt.Sprintf("agent %s: top_k must be >= 0", quote(label)))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid agents:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func quote(label string) string {
	if strings.HasPrefix(label, "#") {
		return label
	}
	return fmt.Sprintf("%q", label)
}

// Select returns the agents whose names appear in names, in the order of
// list. An empty names slice selects everything.
func Select(list []dispatch.PromptAgent, names []string) ([]dispatch.PromptAgent, error) {
	if len(names) == 0 {
		return list, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var out []dispatch.PromptAgent
	for _, a := range list {
		if want[a.Name] {
			out = append(out, a)
			delete(want, a.Name)
		}
	}

	if len(want) > 0 {
		var missing []string
		for _, n := range names {
			if want[n] {
				missing = append(missing, n)
			}
		}
		return nil, fmt.Errorf("unknown agent(s): %s", strings.Join(missing, ", "))
	}

	return out, nil
}
