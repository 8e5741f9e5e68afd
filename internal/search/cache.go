// internal/search/cache.go
package search

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog"
	"github.com/spaolacci/murmur3"
)

// Key identifies a request independent of its working directory.
func Key(req Request) string {
	req.Workdir = ""
	b, _ := json.Marshal(req)
	h := murmur3.New128()
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))
}

// Local serves responses stored under Dir as <key>.json. Misses go to Next
// and are written back; with no Next a miss is ErrNotFound.
type Local struct {
	Dir  string
	Next Searcher
	Log  zerolog.Logger
}

func (l Local) path(req Request) string {
	return filepath.Join(l.Dir, Key(req)+".json")
}

func (l Local) Search(ctx context.Context, req Request) (Response, error) {
	p := l.path(req)
	if b, err := os.ReadFile(p); err == nil {
		var resp Response
		if err := json.Unmarshal(b, &resp); err != nil {
			return Response{}, fmt.Errorf("search cache %s: %w", p, err)
		}
		if err := resp.check(req); err != nil {
			return Response{}, fmt.Errorf("search cache %s: %w", p, err)
		}
		l.Log.Debug().Str("file", p).Msg("alignment cache hit")
		return resp, nil
	} else if !os.IsNotExist(err) {
		return Response{}, err
	}
	if l.Next == nil {
		return Response{}, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	resp, err := l.Next.Search(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if err := l.store(p, resp); err != nil {
		l.Log.Warn().Err(err).Str("file", p).Msg("could not store alignment")
	}
	return resp, nil
}

func (l Local) store(p string, resp Response) error {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Cached keeps recent responses in memory in front of another searcher.
type Cached struct {
	cache *ristretto.Cache
	next  Searcher
}

// NewCached holds up to size responses.
func NewCached(next Searcher, size int64) (*Cached, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10 * size,
		MaxCost:            size,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Cached{cache: cache, next: next}, nil
}

func (c *Cached) Search(ctx context.Context, req Request) (Response, error) {
	key := Key(req)
	if v, ok := c.cache.Get(key); ok {
		return v.(Response), nil
	}
	resp, err := c.next.Search(ctx, req)
	if err != nil {
		return Response{}, err
	}
	c.cache.Set(key, resp, 1)
	c.cache.Wait()
	return resp, nil
}

// Close releases the cache goroutines.
func (c *Cached) Close() { c.cache.Close() }
