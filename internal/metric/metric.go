// internal/metric/metric.go
package metric

import (
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rs/zerolog"
)

const (
	ModelDuration = "foldrun_model_duration"
	MeanPLDDT     = "foldrun_mean_plddt"
	JobCount      = "foldrun_job_count"
	SearchCount   = "foldrun_search_count"

	TagModel  = "model"
	TagStage  = "stage"
	TagStatus = "status"
	TagRun    = "run_id"
)

// Client sends run metrics to a statsd agent. The zero address gives a
// client that drops everything.
type Client struct {
	sd   statsd.ClientInterface
	log  zerolog.Logger
	rate float64
}

// New connects to addr ("host:port"); an empty addr disables metrics.
func New(addr string, log zerolog.Logger, tags ...string) (*Client, error) {
	if addr == "" {
		return Nop(), nil
	}
	sd, err := statsd.New(addr, statsd.WithTags(tags), statsd.WithoutTelemetry())
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", addr).Strs("tags", tags).Msg("metrics client initialized")
	return &Client{sd: sd, log: log, rate: 1}, nil
}

// Nop returns a client that sends nothing.
func Nop() *Client {
	return &Client{sd: &statsd.NoOpClient{}, log: zerolog.Nop(), rate: 1}
}

// Timing records a duration.
func (c *Client) Timing(name string, d time.Duration, tags ...string) {
	if err := c.sd.Timing(name, d, tags, c.rate); err != nil {
		c.log.Warn().Err(err).Msg("statsd timing failed")
	}
}

// Gauge records a value.
func (c *Client) Gauge(name string, v float64, tags ...string) {
	if err := c.sd.Gauge(name, v, tags, c.rate); err != nil {
		c.log.Warn().Err(err).Msg("statsd gauge failed")
	}
}

// Incr adds one to a counter.
func (c *Client) Incr(name string, tags ...string) {
	if err := c.sd.Incr(name, tags, c.rate); err != nil {
		c.log.Warn().Err(err).Msg("statsd count failed")
	}
}

// Close flushes and closes the connection.
func (c *Client) Close() error { return c.sd.Close() }

// Tag formats a statsd tag.
func Tag(key, value string) string { return key + ":" + value }
