package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCommand(t *testing.T) {
	dir := t.TempDir()
	history := filepath.Join(dir, "history.csv")
	queries := filepath.Join(dir, "queries.csv")
	out := filepath.Join(dir, "resolved.csv")

	require.NoError(t, os.WriteFile(history, []byte(
		"entity_id,effective_date,rank_value\n7,2024-01-02,5\n7,2024-01-09,3\n7,2024-01-09,2\n"), 0o644))
	require.NoError(t, os.WriteFile(queries, []byte(
		"entity_id,query_date,mode\n7,2024-01-09,\n7,2024-01-09,on_or_before\n8,2024-01-09,\n"), 0o644))

	cmd := resolveCmd()
	cmd.SetArgs([]string{
		"--history", history,
		"--queries", queries,
		"--out", out,
		"--mode", "strictly_before",
		"--duplicates", "keep_best",
	})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, []string{
		"entity_id,query_date,mode,rank_value,matched_date,resolved",
		"7,2024-01-09,strictly_before,5,2024-01-02,true",
		"7,2024-01-09,on_or_before,2,2024-01-09,true",
		"8,2024-01-09,strictly_before,,,false",
	}, lines)
}

func TestResolveCommand_BadMode(t *testing.T) {
	cmd := resolveCmd()
	cmd.SetArgs([]string{"--history", "h.csv", "--queries", "q.csv", "--mode", "never"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestResolveCommand_MissingFlags(t *testing.T) {
	cmd := resolveCmd()
	cmd.SetArgs([]string{"--queries", "q.csv"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
