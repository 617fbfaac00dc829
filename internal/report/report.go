// Package report renders a run's answers for the terminal or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/leandrotocalini/promptfan/internal/dispatch"
)

// ANSI escape codes
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

const noResponse = "(no response)"

// ColorEnabled resolves an output.color mode for f.
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
}

type painter bool

func (p painter) paint(code, s string) string {
	if !p {
		return s
	}
	return code + s + ansiReset
}

// Text writes one block per answer, in the order the answers completed,
// followed by a summary line.
func Text(w io.Writer, results *dispatch.Results, color bool) error {
	p := painter(color)
	var b strings.Builder

	for _, a := range results.Answers() {
		fmt.Fprintf(&b, "%s %s\n",
			p.paint(ansiBold+ansiCyan, "● "+a.Name),
			p.paint(ansiDim, "· "+a.Duration.Round(time.Millisecond).String()),
		)

		switch {
		case a.Failed():
			fmt.Fprintf(&b, "  %s\n", p.paint(ansiBold+ansiRed, "error ["+a.ErrorType+"]: "+a.Error))
		case a.Response == nil:
			fmt.Fprintf(&b, "  %s\n", p.paint(ansiYellow, noResponse))
		default:
			for _, line := range strings.Split(strings.TrimRight(*a.Response, "\n"), "\n") {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
		b.WriteString("\n")
	}

	s := results.Summary()
	fmt.Fprintln(&b, p.paint(ansiDim, fmt.Sprintf("%d succeeded · %d failed · %d tokens · %s",
		s.Succeeded, s.Failed, s.TotalTokens, s.WallClock.Round(time.Millisecond))))

	_, err := io.WriteString(w, b.String())
	return err
}

type jsonReport struct {
	RunID   string            `json:"run_id"`
	Answers []dispatch.Answer `json:"answers"`
	Summary dispatch.Summary  `json:"summary"`
}

// JSON writes the run id, answers, and summary as indented JSON. Absent
// responses are encoded as null.
func JSON(w io.Writer, results *dispatch.Results) error {
	answers := results.Answers()
	if answers == nil {
		answers = []dispatch.Answer{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		RunID:   results.RunID,
		Answers: answers,
		Summary: results.Summary(),
	})
}

// Progress returns an observer that prints one status line per finished
// answer. Safe to call from concurrent goroutines.
func Progress(w io.Writer, color bool) func(dispatch.Answer) {
	p := painter(color)
	var mu sync.Mutex

	return func(a dispatch.Answer) {
		var status string
		switch {
		case a.Failed():
			status = p.paint(ansiRed, "✗ failed")
		case a.Response == nil:
			status = p.paint(ansiYellow, "○ empty")
		default:
			status = p.paint(ansiGreen, "✓ done")
		}

		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "  %s %s %s\n", status, a.Name, p.paint(ansiDim, a.Duration.Round(time.Millisecond).String()))
	}
}
