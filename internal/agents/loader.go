package agents

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leandrotocalini/promptfan/internal/dispatch"
)

// fileSchema is the on-disk agents file.
//
//	question: what is the capital of France?
//	agents:
//	  - name: 1 word response
//	    system: respond to this question with 1 word
//	  - name: custom
//	    messages:
//	      - {role: system, content: be terse}
//	      - {role: user, content: hello}
//	    temperature: 0.7
type fileSchema struct {
	Question string      `yaml:"question"`
	Agents   []fileAgent `yaml:"agents"`
}

// fileAgent uses pointers for sampling values so an omitted key can take
// the default while an explicit 0 is kept.
type fileAgent struct {
	Name        string             `yaml:"name"`
	System      string             `yaml:"system"`
	Prompt      string             `yaml:"prompt"`
	Messages    []dispatch.Message `yaml:"messages"`
	Temperature *float64           `yaml:"temperature"`
	TopP        *float64           `yaml:"top_p"`
	TopK        *int               `yaml:"top_k"`
}

// Load reads and validates an agents file.
func Load(path string) ([]dispatch.PromptAgent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}

	list, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// Parse decodes agents YAML, expands the system/prompt shorthand, and
// validates the result.
func Parse(data []byte) ([]dispatch.PromptAgent, error) {
	var f fileSchema
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse agents YAML: %w", err)
	}

	list := make([]dispatch.PromptAgent, 0, len(f.Agents))
	for _, fa := range f.Agents {
		list = append(list, fa.toAgent(f.Question))
	}

	if err := Validate(list); err != nil {
		return nil, err
	}
	return list, nil
}

func (fa fileAgent) toAgent(question string) dispatch.PromptAgent {
	a := dispatch.PromptAgent{
		Name:        fa.Name,
		Temperature: 0,
		TopP:        1,
		TopK:        1,
	}
	if fa.Temperature != nil {
		a.Temperature = *fa.Temperature
	}
	if fa.TopP != nil {
		a.TopP = *fa.TopP
	}
	if fa.TopK != nil {
		a.TopK = *fa.TopK
	}

	if len(fa.Messages) > 0 {
		a.Messages = append([]dispatch.Message(nil), fa.Messages...)
		return a
	}

	if fa.System != "" {
		a.Messages = append(a.Messages, dispatch.Message{Role: "system", Content: fa.System})
	}
	prompt := fa.Prompt
	if prompt == "" {
		prompt = question
	}
	if prompt != "" {
		a.Messages = append(a.Messages, dispatch.Message{Role: "user", Content: prompt})
	}
	return a
}
