package report

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrotocalini/promptfan/internal/dispatch"
)

func ptr(s string) *string { return &s }

func sampleResults() *dispatch.Results {
	r := dispatch.NewResults()
	r.Append(dispatch.Answer{
		Name:     "1 word response",
		Response: ptr("Paris"),
		Usage:    dispatch.TokenUsage{TotalTokens: 13},
		Duration: 1200 * time.Millisecond,
	})
	r.Append(dispatch.Answer{
		Name:     "2 word response",
		Duration: 300 * time.Millisecond,
	})
	r.Append(dispatch.Answer{
		Name:      "1 sentence response",
		Error:     "completions credential (HTTP 401): invalid api key",
		ErrorType: "credential",
		Duration:  50 * time.Millisecond,
	})
	return r
}

func TestText_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleResults(), false))

	out := buf.String()
	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "● 1 word response · 1.2s\n  Paris\n")
	assert.Contains(t, out, "● 2 word response · 300ms\n  (no response)\n")
	assert.Contains(t, out, "error [credential]: completions credential (HTTP 401): invalid api key")

	// Completion order is kept.
	assert.Less(t, strings.Index(out, "1 word response"), strings.Index(out, "2 word response"))
	assert.Less(t, strings.Index(out, "2 word response"), strings.Index(out, "1 sentence response"))
}

func TestText_Summary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleResults(), false))
	// The empty answer is a success: the request worked, the content was absent.
	assert.Contains(t, buf.String(), "2 succeeded · 1 failed · 13 tokens · 1.2s")
}

func TestText_MultilineResponseIsIndented(t *testing.T) {
	r := dispatch.NewResults()
	r.Append(dispatch.Answer{Name: "poem", Response: ptr("line one\nline two\n")})

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, r, false))
	assert.Contains(t, buf.String(), "  line one\n  line two\n\n")
}

func TestText_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleResults(), true))
	assert.Contains(t, buf.String(), ansiBold+ansiCyan+"● 1 word response"+ansiReset)
	assert.Contains(t, buf.String(), ansiBold+ansiRed)
}

func TestJSON(t *testing.T) {
	results := sampleResults()

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, results))

	var got struct {
		RunID   string `json:"run_id"`
		Answers []struct {
			Name      string  `json:"name"`
			Response  *string `json:"response"`
			ErrorType string  `json:"error_type"`
		} `json:"answers"`
		Summary dispatch.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, results.RunID, got.RunID)
	require.Len(t, got.Answers, 3)
	require.NotNil(t, got.Answers[0].Response)
	assert.Equal(t, "Paris", *got.Answers[0].Response)
	assert.Nil(t, got.Answers[1].Response)
	assert.Equal(t, "credential", got.Answers[2].ErrorType)
	assert.Equal(t, 2, got.Summary.Succeeded)
	assert.Equal(t, 1, got.Summary.Failed)

	assert.Contains(t, buf.String(), `"response": null`)
}

func TestJSON_EmptyRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, dispatch.NewResults()))
	assert.Contains(t, buf.String(), `"answers": []`)
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	observe := Progress(&buf, false)

	for _, a := range sampleResults().Answers() {
		observe(a)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "✓ done 1 word response")
	assert.Contains(t, lines[1], "○ empty 2 word response")
	assert.Contains(t, lines[2], "✗ failed 1 sentence response")
}

func TestColorEnabled(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.True(t, ColorEnabled("always", f))
	assert.False(t, ColorEnabled("never", f))
	assert.False(t, ColorEnabled("auto", f), "regular files are not terminals")
}
