// internal/app/deps.go
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"foldrun-core/features"
	"foldrun-core/query"
	"foldrun/internal/cli"
	"foldrun/internal/config"
	"foldrun/internal/pipeline"
	"foldrun/internal/predictor"
	"foldrun/internal/relax"
	"foldrun/internal/search"
)

// newPredictor connects the prediction backend; tests swap it.
var newPredictor = func(ctx context.Context, c config.PredictorConfig) (predictor.Predictor, error) {
	if c.URL == "" {
		return nil, errors.New("no predictor configured (predictor.url or FOLDRUN_PREDICTOR_URL)")
	}
	return predictor.Dial(ctx, c.URL, c.Timeout, c.Compress)
}

// collaborators wires search, templates, prediction and relaxation from
// the configuration. needSearch is false when every query brings its own
// alignment. The returned func releases what was opened.
func collaborators(ctx context.Context, opts cli.Options, cfg config.Config, modelType features.ModelType, needSearch bool, log zerolog.Logger) (pipeline.Deps, func(), error) {
	deps := pipeline.Deps{Log: log}
	closer := func() {}

	p, err := newPredictor(ctx, cfg.Predictor)
	if err != nil {
		return deps, closer, err
	}
	if got := p.Config().ModelType; got != "" && got != modelType {
		return deps, closer, fmt.Errorf("predictor serves %s, run needs %s", got, modelType)
	}
	if deps.Runners, err = predictor.Runners(p, opts.ModelOrder, opts.NumModels); err != nil {
		return deps, closer, err
	}

	if needSearch {
		deps.Searcher, closer, err = searcher(opts, cfg.Search, log)
	} else {
		log.Debug().Msg("all queries carry alignments, no search backend needed")
	}
	if err != nil {
		return deps, closer, err
	}

	if opts.Templates {
		if len(cfg.Templates.Command) > 0 {
			deps.Templates = search.TemplateCommand{Argv: cfg.Templates.Command}
		} else {
			log.Warn().Msg("no template featurizer configured, using stub templates")
		}
	}
	if opts.Amber {
		if len(cfg.Relax.Command) == 0 {
			return deps, closer, errors.New("--amber needs relax.command in the configuration")
		}
		deps.Relaxer = relax.Command{Argv: cfg.Relax.Command}
	}
	return deps, closer, nil
}

// needsSearch reports whether any query lacks a precomputed alignment.
func needsSearch(qs []query.Query) bool {
	for _, q := range qs {
		if q.A3M == nil {
			return true
		}
	}
	return false
}

// searcher stacks the memory cache over the disk cache over the search
// command, skipping the tiers that are not configured.
func searcher(opts cli.Options, c config.SearchConfig, log zerolog.Logger) (search.Searcher, func(), error) {
	noop := func() {}
	if search.MSAMode(opts.MSAMode) == search.SingleSeq {
		return search.SingleSequence{}, noop, nil
	}
	var s search.Searcher
	if len(c.Command) > 0 {
		s = search.Command{Argv: c.Command}
	}
	if c.CacheDir != "" {
		s = search.Local{Dir: c.CacheDir, Next: s, Log: log}
	}
	if s == nil {
		return nil, noop, errors.New("no alignment search configured (search.command or search.cache_dir)")
	}
	if c.CacheSize > 0 {
		cached, err := search.NewCached(s, c.CacheSize)
		if err != nil {
			return nil, noop, err
		}
		return cached, cached.Close, nil
	}
	return s, noop, nil
}
