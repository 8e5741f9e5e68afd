// internal/search/search.go
package search

import (
	"context"
	"errors"
	"fmt"

	"foldrun-core/msa"
)

var (
	// ErrNotFound is returned by a cache tier without a fallback searcher.
	ErrNotFound = errors.New("alignment not found")
	// ErrShortResponse means a searcher returned fewer blocks than sequences.
	ErrShortResponse = errors.New("search returned fewer alignments than sequences")
)

// Request describes one alignment search over the unique sequences of a job.
type Request struct {
	Seqs         []string `json:"seqs"`
	Workdir      string   `json:"workdir"`
	UseEnv       bool     `json:"use_env"`
	UsePairing   bool     `json:"use_pairing"`
	UseTemplates bool     `json:"use_templates"`
}

// Response holds one A3M block per sequence. TemplatePaths is nil when the
// service has no template hits at all; an empty entry means none for that
// sequence.
type Response struct {
	A3M           []string `json:"a3m"`
	TemplatePaths []string `json:"template_paths"`
}

// Searcher is the alignment-search collaborator. Retries and back-off are
// the implementation's concern; an error fails the job.
type Searcher interface {
	Search(ctx context.Context, req Request) (Response, error)
}

func (r Response) check(req Request) error {
	if len(r.A3M) < len(req.Seqs) {
		return fmt.Errorf("%w: %d for %d", ErrShortResponse, len(r.A3M), len(req.Seqs))
	}
	if r.TemplatePaths != nil && len(r.TemplatePaths) < len(req.Seqs) {
		return fmt.Errorf("%w: %d template paths for %d", ErrShortResponse, len(r.TemplatePaths), len(req.Seqs))
	}
	return nil
}

// SingleSequence answers every request with query-only blocks.
type SingleSequence struct{}

func (SingleSequence) Search(_ context.Context, req Request) (Response, error) {
	return Response{A3M: msa.SingleSequence(req.Seqs)}, nil
}
