package jsonutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePretty(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, EncodePretty(&b, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", b.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x.json")
	require.NoError(t, WriteFile(p, []int{1, 2}))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "[\n  1,\n  2\n]\n", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Error(t, WriteFile(filepath.Join(dir, "missing", "x.json"), 1))
}
