package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/stockpile/pkg/config"
	"github.com/ajitpratap0/stockpile/pkg/testutil"
)

const poolYAML = `
name: arena
pool:
  prewarm_count: 2
catalog:
  - key: units
    entries:
      - key: orc
        prototype: record
        size: 4
      - prototype: buffer
        size: 16
  - key: fx
    entries:
      - key: ghost
logging:
  level: error
soak:
  rounds: 20
  hold: 3
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Stockpile v"+version)
}

func TestValidateJSON(t *testing.T) {
	path := testutil.WriteTempFile(t, "pool.yaml", poolYAML)

	out, err := execute(t, "validate", "--config", path, "--json")
	require.NoError(t, err)

	var res validateResult
	require.NoError(t, gojson.Unmarshal([]byte(out), &res))
	assert.True(t, res.Valid)
	assert.Equal(t, "arena", res.Name)
	assert.Equal(t, []string{"units"}, res.Categories)
	assert.Equal(t, 2, res.Catalog.Bindings)
	assert.Equal(t, 1, res.Catalog.DroppedCategories)
}

func TestValidateRejectsEmptyCatalog(t *testing.T) {
	path := testutil.WriteTempFile(t, "empty.yaml", "name: empty\nlogging:\n  level: error\n")

	out, err := execute(t, "validate", "--config", path)
	require.Error(t, err)
	assert.Contains(t, out, "empty prototype catalog")
}

func TestSortRewritesCatalog(t *testing.T) {
	path := testutil.WriteTempFile(t, "pool.yaml", poolYAML)
	output := filepath.Join(filepath.Dir(path), "sorted.yaml")

	out, err := execute(t, "sort", "--config", path, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Sorted 1 categories")

	cfg := &config.Config{}
	require.NoError(t, config.Load(output, cfg))
	require.Len(t, cfg.Catalog, 1)
	assert.Equal(t, []config.EntryConfig{
		{Key: "buffer-16", Prototype: "buffer", Size: 16},
		{Key: "orc", Prototype: "record", Size: 4},
	}, cfg.Catalog[0].Entries)

	original, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, poolYAML, string(original), "input is untouched when --output is set")
}

func TestSoakJSON(t *testing.T) {
	path := testutil.WriteTempFile(t, "pool.yaml", poolYAML)

	out, err := execute(t, "soak", "--config", path, "--rounds", "10", "--json")
	require.NoError(t, err)

	var rep struct {
		Rounds  int   `json:"rounds"`
		Borrows int64 `json:"borrows"`
		Returns int64 `json:"returns"`
		Stats   struct {
			Name   string `json:"name"`
			Active int    `json:"active"`
		} `json:"stats"`
	}
	require.NoError(t, gojson.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 10, rep.Rounds)
	assert.Equal(t, rep.Borrows, rep.Returns)
	assert.Equal(t, "arena", rep.Stats.Name)
	assert.Zero(t, rep.Stats.Active)
}

func TestSoakRequiresConfig(t *testing.T) {
	_, err := execute(t, "soak")
	require.Error(t, err)
}

func TestSoakWritesProfiles(t *testing.T) {
	path := testutil.WriteTempFile(t, "pool.yaml", poolYAML)
	dir := filepath.Dir(path)
	cpu, mem := filepath.Join(dir, "cpu.prof"), filepath.Join(dir, "mem.prof")

	_, err := execute(t, "soak", "--config", path, "--rounds", "5", "--cpuprofile", cpu, "--memprofile", mem)
	require.NoError(t, err)

	for _, p := range []string{cpu, mem} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
