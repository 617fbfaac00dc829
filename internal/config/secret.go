package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by PromptCredential when in is not a TTY.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// PromptCredential asks for the API credential on out and reads it from in
// without echo.
func PromptCredential(in *os.File, out io.Writer) (string, error) {
	if !IsTerminal(in) {
		return "", ErrNotTerminal
	}

	fmt.Fprint(out, "API credential: ")
	b, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}

	key := strings.TrimSpace(string(b))
	if key == "" {
		return "", errors.New("empty credential")
	}
	return key, nil
}
