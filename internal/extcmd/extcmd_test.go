package extcmd

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh")
	}
	out, err := Run(context.Background(), []string{"sh", "-c", "tr a-z A-Z"}, []byte("mkv"))
	require.NoError(t, err)
	assert.Equal(t, "MKV", string(out))

	_, err = Run(context.Background(), []string{"sh", "-c", "echo boom >&2; exit 3"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, err = Run(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoCommand)
}
