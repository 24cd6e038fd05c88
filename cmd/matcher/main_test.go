package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namematcher/matching"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_TextToJSON(t *testing.T) {
	input := writeInput(t, "members.txt", "Acme Holdings, Globex Inc.\nAcme Holdings\n")
	output := filepath.Join(t.TempDir(), "result.json")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-input", input,
		"-output", output,
		"-provider", "mock",
		"-cache", "none",
		"-delay", "0s",
		"-min-similarity", "0",
		"-log-level", "ERROR",
		"-verbose",
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var doc struct {
		Total   int                    `json:"total"`
		Results []matching.MatchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 3, doc.Total)
	for _, result := range doc.Results {
		assert.Equal(t, matching.OutcomeMatched, result.Outcome)
		assert.Equal(t, "members.txt", result.Candidate.Origin.SourceID)
	}

	out := stdout.String()
	assert.Contains(t, out, "Matching summary")
	assert.Contains(t, out, "100.00%")
	assert.Contains(t, out, "Acme Holdings Limited")
}

func TestRun_SQLiteCache(t *testing.T) {
	input := writeInput(t, "members.html", "<ul><li>Acme Holdings</li><li>Initech Ltd</li></ul>")
	output := filepath.Join(t.TempDir(), "result.csv")
	db := filepath.Join(t.TempDir(), "cache.db")

	args := []string{
		"-input", input,
		"-output", output,
		"-provider", "mock",
		"-cache", "sqlite",
		"-db", db,
		"-delay", "0s",
		"-log-level", "ERROR",
	}

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), args, &stdout, &stderr), stderr.String())
	assert.FileExists(t, output)
	assert.FileExists(t, db)
}

func TestRun_Errors(t *testing.T) {
	input := writeInput(t, "members.txt", "Acme Holdings")
	dir := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing input and output",
			args:    []string{"-provider", "mock"},
			wantErr: "-input is required; -output is required",
		},
		{
			name:    "unsupported input",
			args:    []string{"-input", filepath.Join(dir, "list.docx"), "-output", filepath.Join(dir, "out.csv"), "-provider", "mock"},
			wantErr: "unsupported input format",
		},
		{
			name:    "unsupported output",
			args:    []string{"-input", input, "-output", filepath.Join(dir, "out.pdf"), "-provider", "mock"},
			wantErr: "unsupported",
		},
		{
			name:    "invalid similarity",
			args:    []string{"-input", input, "-output", filepath.Join(dir, "out.csv"), "-provider", "mock", "-min-similarity", "120"},
			wantErr: "min_similarity",
		},
		{
			name:    "unknown provider",
			args:    []string{"-input", input, "-output", filepath.Join(dir, "out.csv"), "-provider", "dadata"},
			wantErr: "unknown registry provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, &stdout, &stderr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRenderSummary(t *testing.T) {
	batch := &matching.BatchResult{
		Summary: matching.Summary{
			TotalOccurrences: 3,
			UniqueKeys:       3,
			Lookups:          1,
			Matched:          1,
			Skipped:          2,
			MatchRate:        33.33,
			Cancelled:        true,
			Duration:         1234 * time.Millisecond,
		},
	}

	out := renderSummary(batch, "members.txt", "result.csv")
	assert.Contains(t, out, "Matching summary (cancelled)")
	assert.Contains(t, out, "members.txt")
	assert.Contains(t, out, "33.33%")
	assert.Contains(t, out, "1.234s")
}

func TestFilterFlag(t *testing.T) {
	args := []string{"-input", "env", "--env", "a.env", "-verbose", "-env=b.env"}
	assert.Equal(t, []string{"-env", "a.env", "-env=b.env"}, filterFlag(args, "env"))
}
