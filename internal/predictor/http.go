// internal/predictor/http.go
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"foldrun-core/features"
)

const contentEncoding = "zstd"

var _ Predictor = (*HTTPClient)(nil)

// HTTPClient talks to a prediction server:
//
//	GET  /config
//	POST /models/{name}/process?seed=N   feature dict in, processed dict out
//	POST /models/{name}/predict          processed dict in, Result out
//
// Bodies are JSON, zstd-compressed when Compress is set. The server answers
// 507 when the accelerator is out of memory.
type HTTPClient struct {
	base     string
	client   *http.Client
	compress bool
	cfg      Config
	params   string
}

// Dial fetches the model configuration from base.
func Dial(ctx context.Context, base string, timeout time.Duration, compress bool) (*HTTPClient, error) {
	if _, err := url.Parse(base); err != nil || base == "" {
		return nil, fmt.Errorf("predictor url %q: invalid", base)
	}
	c := &HTTPClient{
		base:     strings.TrimRight(base, "/"),
		client:   &http.Client{Timeout: timeout},
		compress: compress,
	}
	if err := c.do(ctx, http.MethodGet, "/config", nil, &c.cfg); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *HTTPClient) Config() Config { return c.cfg }

func (c *HTTPClient) SetParams(_ context.Context, name string) error {
	c.params = name
	return nil
}

func (c *HTTPClient) ProcessFeatures(ctx context.Context, raw features.Dict, seed int64) (features.Dict, error) {
	var out features.Dict
	path := "/models/" + url.PathEscape(c.params) + "/process?seed=" + strconv.FormatInt(seed, 10)
	if err := c.do(ctx, http.MethodPost, path, raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Predict(ctx context.Context, f features.Dict) (*Result, error) {
	var out Result
	if err := c.do(ctx, http.MethodPost, "/models/"+url.PathEscape(c.params)+"/predict", f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		if c.compress {
			if b, err = compress(b); err != nil {
				return err
			}
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
		if c.compress {
			req.Header.Set("Content-Encoding", contentEncoding)
		}
	}
	if c.compress {
		req.Header.Set("Accept-Encoding", contentEncoding)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("predictor %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("predictor %s %s: %w", method, path, err)
	}
	if resp.Header.Get("Content-Encoding") == contentEncoding {
		if b, err = decompress(b); err != nil {
			return fmt.Errorf("predictor %s %s: %w", method, path, err)
		}
	}
	switch {
	case resp.StatusCode == http.StatusInsufficientStorage:
		return fmt.Errorf("predictor %s: %w: %s", path, ErrResourceExhausted, strings.TrimSpace(string(b)))
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("predictor %s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(b)))
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("predictor %s: decode: %w", path, err)
	}
	return nil
}
