package metric

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopClient(t *testing.T) {
	c, err := New("", zerolog.Nop())
	require.NoError(t, err)
	c.Timing(ModelDuration, time.Second, Tag(TagModel, "model_1"))
	c.Gauge(MeanPLDDT, 80)
	c.Incr(JobCount)
	assert.NoError(t, c.Close())
}

func TestClientSends(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	c, err := New(conn.LocalAddr().String(), zerolog.Nop(), "env:test")
	require.NoError(t, err)
	c.Timing(ModelDuration, 1500*time.Millisecond, Tag(TagModel, "model_3"))
	require.NoError(t, c.Close())

	buf := make([]byte, 4096)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)
	got := string(buf[:n])
	assert.True(t, strings.HasPrefix(got, ModelDuration+":"), got)
	assert.Contains(t, got, "|ms")
	assert.Contains(t, got, "model:model_3")
	assert.Contains(t, got, "env:test")
}
