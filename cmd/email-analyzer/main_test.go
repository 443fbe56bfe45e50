package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mikey/llm-email-agent/internal/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInput(t *testing.T) {
	data, err := readInput(&di.CLIFlags{Example: true, InputFile: "ignored"}, strings.NewReader("stdin"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Dear Team,"))

	path := filepath.Join(t.TempDir(), "mail.eml")
	require.NoError(t, os.WriteFile(path, []byte("Subject: hi\n\nbody"), 0o600))
	data, err = readInput(&di.CLIFlags{InputFile: path}, strings.NewReader("stdin"))
	require.NoError(t, err)
	assert.Equal(t, "Subject: hi\n\nbody", string(data))

	data, err = readInput(&di.CLIFlags{}, strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(data))

	_, err = readInput(&di.CLIFlags{InputFile: filepath.Join(t.TempDir(), "missing.eml")}, nil)
	assert.ErrorContains(t, err, "failed to read input file")
}

func TestCheckLength(t *testing.T) {
	assert.NoError(t, checkLength("Short note.", 5000))
	assert.NoError(t, checkLength(strings.Repeat("é", 5000), 5000))
	assert.NoError(t, checkLength(strings.Repeat("a", 9000), 0))

	assert.ErrorContains(t, checkLength(strings.Repeat("a", 5001), 5000), "longer than the 5000 allowed")
	assert.ErrorContains(t, checkLength(" \n\t", 5000), "empty")
}

func TestAnalyze_RejectsOversizedEmail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a", 5001)), 0o600))

	var out strings.Builder
	err := analyze(context.Background(), &di.CLIFlags{InputFile: path}, nil, &out)
	assert.ErrorContains(t, err, "longer than the 5000 allowed")
	assert.Empty(t, out.String())
}

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"config", "provider", "file", "example", "verbose", "json-log"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
