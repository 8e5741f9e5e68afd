// internal/search/resolve.go
package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"foldrun-core/msa"
	"foldrun-core/template"
)

// MSAMode selects the alignment databases.
type MSAMode string

const (
	MMseqs2UniRefEnv MSAMode = "mmseqs2_uniref_env"
	MMseqs2UniRef    MSAMode = "mmseqs2_uniref"
	SingleSeq        MSAMode = "single_sequence"
)

// PairMode selects which alignment flavors are fetched for complexes.
type PairMode string

const (
	PairUnpaired       PairMode = "unpaired"
	PairPaired         PairMode = "paired"
	PairUnpairedPaired PairMode = "unpaired+paired"
	PairNone           PairMode = "none"
)

func (m PairMode) unpaired() bool { return m != PairPaired }
func (m PairMode) paired() bool   { return m == PairPaired || m == PairUnpairedPaired }

// Options configures Resolve.
type Options struct {
	MSAMode      MSAMode
	PairMode     PairMode
	UseTemplates bool
	Workdir      string
}

// Alignments is what a job needs besides its sequences to build features.
// Slices are indexed by unique sequence; nil means absent.
type Alignments struct {
	Unpaired  []string
	Paired    []string
	Templates []template.Features
}

// Resolve fetches alignments and templates for set. A nil featurizer or
// missing template hits fall back to stub templates.
func Resolve(ctx context.Context, s Searcher, f template.Featurizer, set msa.SequenceSet, opt Options, log zerolog.Logger) (Alignments, error) {
	if opt.MSAMode == SingleSeq {
		s = SingleSequence{}
	}
	useEnv := opt.MSAMode == MMseqs2UniRefEnv
	var out Alignments

	templates, err := resolveTemplates(ctx, s, f, set, opt, useEnv, log)
	if err != nil {
		return Alignments{}, err
	}
	out.Templates = templates

	pair := opt.PairMode
	if set.NumChains() == 1 {
		pair = PairNone
	}
	if pair.unpaired() {
		if opt.MSAMode == SingleSeq {
			out.Unpaired = msa.SingleSequence(set.Seqs)
		} else {
			resp, err := search(ctx, s, Request{Seqs: set.Seqs, Workdir: opt.Workdir, UseEnv: useEnv})
			if err != nil {
				return Alignments{}, err
			}
			out.Unpaired = resp.A3M[:len(set.Seqs)]
		}
	}
	if pair.paired() {
		if len(set.Seqs) > 1 {
			resp, err := search(ctx, s, Request{Seqs: set.Seqs, Workdir: opt.Workdir, UsePairing: true})
			if err != nil {
				return Alignments{}, err
			}
			out.Paired = resp.A3M[:len(set.Seqs)]
		} else {
			out.Paired = msa.SyntheticPaired(set.Seqs[0], set.Cardinality[0])
		}
	}
	return out, nil
}

func search(ctx context.Context, s Searcher, req Request) (Response, error) {
	resp, err := s.Search(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("alignment search: %w", err)
	}
	if err := resp.check(req); err != nil {
		return Response{}, err
	}
	return resp, nil
}

func resolveTemplates(ctx context.Context, s Searcher, f template.Featurizer, set msa.SequenceSet, opt Options, useEnv bool, log zerolog.Logger) ([]template.Features, error) {
	out := make([]template.Features, len(set.Seqs))
	for i, seq := range set.Seqs {
		out[i] = template.Mock(len(seq), 1)
	}
	if !opt.UseTemplates {
		return out, nil
	}
	resp, err := search(ctx, s, Request{Seqs: set.Seqs, Workdir: opt.Workdir, UseEnv: useEnv, UseTemplates: true})
	if err != nil {
		return nil, err
	}
	if resp.TemplatePaths == nil || f == nil {
		return out, nil
	}
	for i, seq := range set.Seqs {
		if resp.TemplatePaths[i] == "" {
			continue
		}
		feat, err := f.Featurize(ctx, resp.A3M[i], resp.TemplatePaths[i], seq)
		if err != nil {
			return nil, fmt.Errorf("sequence %d templates: %w", i, err)
		}
		if len(feat.Strings(template.DomainNames)) == 0 {
			log.Info().Int("sequence", i).Msg("no templates found")
			continue
		}
		if err := template.Validate(feat, len(seq)); err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		log.Info().Int("sequence", i).Strs("templates", feat.Strings(template.DomainNames)).Msg("templates found")
		out[i] = feat
	}
	return out, nil
}
