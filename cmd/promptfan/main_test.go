package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrotocalini/promptfan/internal/config"
	"github.com/leandrotocalini/promptfan/internal/dispatch"
	"github.com/leandrotocalini/promptfan/internal/provider/completions"
)

type stubCompleter func(req completions.ChatRequest) (*completions.ChatResponse, error)

func (s stubCompleter) Complete(_ context.Context, req completions.ChatRequest) (*completions.ChatResponse, error) {
	return s(req)
}

func paris(req completions.ChatRequest) (*completions.ChatResponse, error) {
	content := "Paris"
	return &completions.ChatResponse{
		Choices: []completions.Choice{{Message: &completions.RespMessage{Role: "assistant", Content: &content}}},
		Usage:   completions.TokenUsage{TotalTokens: 10},
	}, nil
}

// setup isolates the test from any real config and returns an app writing
// into buffers.
func setup(t *testing.T, c stubCompleter) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	for _, k := range []string{config.EnvConfig, config.EnvEndpointURL, config.EnvModelID, config.EnvAPICredential, config.EnvAgentsFile} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	a := &app{
		stdout: &stdout,
		stderr: &stderr,
		newCompleter: func(*config.Config, *slog.Logger) dispatch.Completer {
			return c
		},
	}
	return a, &stdout, &stderr
}

func TestRun_BuiltinAgents(t *testing.T) {
	a, stdout, stderr := setup(t, paris)
	t.Setenv(config.EnvAPICredential, "sk-test")

	err := a.router().Dispatch(context.Background(), []string{"--color", "never"})
	require.NoError(t, err)

	out := stdout.String()
	assert.Equal(t, 3, strings.Count(out, "  Paris\n"))
	assert.Contains(t, out, "3 succeeded · 0 failed · 30 tokens")
	assert.Equal(t, 3, strings.Count(stderr.String(), "✓ done"))
}

func TestRun_JSONAndOnly(t *testing.T) {
	a, stdout, stderr := setup(t, paris)
	t.Setenv(config.EnvAPICredential, "sk-test")

	err := a.router().Dispatch(context.Background(), []string{"run", "--format", "json", "--only", "2 word response"})
	require.NoError(t, err)

	var got struct {
		Answers []dispatch.Answer `json:"answers"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got.Answers, 1)
	assert.Equal(t, "2 word response", got.Answers[0].Name)
	assert.NotContains(t, stderr.String(), "✓ done", "no progress lines in json mode")
}

func TestRun_AllFailed(t *testing.T) {
	a, stdout, _ := setup(t, func(completions.ChatRequest) (*completions.ChatResponse, error) {
		return nil, &completions.ClassifiedError{Type: completions.ErrAuth, StatusCode: 401, Message: "bad key"}
	})
	t.Setenv(config.EnvAPICredential, "sk-test")

	err := a.router().Dispatch(context.Background(), []string{"run", "--color", "never"})
	assert.True(t, errors.Is(err, errAllFailed))
	assert.Contains(t, stdout.String(), "error [credential]")
}

func TestRun_PartialFailureIsSuccess(t *testing.T) {
	a, _, _ := setup(t, func(req completions.ChatRequest) (*completions.ChatResponse, error) {
		if req.Messages[0].Content == "respond to this question with 2 words" {
			return nil, &completions.ClassifiedError{Type: completions.ErrTransport, Message: "connection refused"}
		}
		return paris(req)
	})
	t.Setenv(config.EnvAPICredential, "sk-test")

	require.NoError(t, a.router().Dispatch(context.Background(), nil))
}

func TestRun_MissingCredential(t *testing.T) {
	a, _, _ := setup(t, paris)

	err := a.router().Dispatch(context.Background(), []string{"run"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_credential")
}

func TestRun_UnknownAgent(t *testing.T) {
	a, _, _ := setup(t, paris)
	t.Setenv(config.EnvAPICredential, "sk-test")

	err := a.router().Dispatch(context.Background(), []string{"run", "--only", "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestRun_AgentsFile(t *testing.T) {
	a, stdout, _ := setup(t, paris)
	t.Setenv(config.EnvAPICredential, "sk-test")

	path := filepath.Join(t.TempDir(), "agents.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agents:\n  - name: only one\n    prompt: hi\n"), 0o644))

	require.NoError(t, a.router().Dispatch(context.Background(), []string{"--agents", path, "--color", "never"}))
	assert.Contains(t, stdout.String(), "● only one")
	assert.Contains(t, stdout.String(), "1 succeeded · 0 failed")
}

func TestAgentsCommand(t *testing.T) {
	a, stdout, _ := setup(t, paris)

	require.NoError(t, a.router().Dispatch(context.Background(), []string{"agents"}))
	out := stdout.String()
	assert.Contains(t, out, "1 word response")
	assert.Contains(t, out, "1 sentence response")
	assert.Contains(t, out, "user:     what is the capital of France?")
}

func TestValidateCommand_NoCredentialNeeded(t *testing.T) {
	a, stdout, _ := setup(t, paris)

	require.NoError(t, a.router().Dispatch(context.Background(), []string{"validate"}))
	assert.Contains(t, stdout.String(), "3 agent(s) valid")
}

func TestValidateCommand_BadFormat(t *testing.T) {
	a, _, _ := setup(t, paris)

	err := a.router().Dispatch(context.Background(), []string{"validate", "--format", "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")
}

func TestVersionCommand(t *testing.T) {
	a, stdout, _ := setup(t, paris)

	require.NoError(t, a.router().Dispatch(context.Background(), []string{"version"}))
	assert.Equal(t, "promptfan dev\n", stdout.String())
}

func TestHelpCommand(t *testing.T) {
	a, stdout, _ := setup(t, paris)

	require.NoError(t, a.router().Dispatch(context.Background(), []string{"help"}))
	assert.Contains(t, stdout.String(), "usage: promptfan")
	assert.Contains(t, stdout.String(), "validate")

	stdout.Reset()
	require.NoError(t, a.router().Dispatch(context.Background(), []string{"help", "agents"}))
	assert.Equal(t, "promptfan agents: List the resolved agents\n", stdout.String())

	err := a.router().Dispatch(context.Background(), []string{"help", "deploy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deploy")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", firstLine("one"))
	assert.Equal(t, "one …", firstLine("one\ntwo"))
}
