package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cellStory = "../../internal/cli/testdata/cell.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "knots version ")
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", cellStory)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte(`
entry: main
knots:
  main:
    entry: start
    nodes:
      start:
        text: Hi.
        choices:
          - {id: go, label: Go, target: nowhere}
`), 0644))

	out, err = run(t, "validate", broken)
	assert.Error(t, err)
	assert.Contains(t, out, "Missing node 'main/nowhere' (linked from 'main/start')")
}

func TestGraph(t *testing.T) {
	out, err := run(t, "graph", cellStory)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "subgraph knot_yard")
}

func TestPlay(t *testing.T) {
	rootCmd.SetIn(bytes.NewBufferString("1\n1\n"))
	out, err := run(t, "play", cellStory, "--plain", "--hook", "has_key=true")
	require.NoError(t, err)
	assert.Contains(t, out, "**THE END: Freedom**")
}
