// internal/pipeline/run.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"foldrun-core/features"
	"foldrun-core/msa"
	"foldrun-core/query"
	"foldrun-core/template"
	"foldrun/internal/metric"
	"foldrun/internal/predictor"
	"foldrun/internal/relax"
	"foldrun/internal/search"
	"foldrun/internal/writers"
	"foldrun/pkg/api"
)

// Options are the run-wide settings of the job loop.
type Options struct {
	ResultDir    string
	MSAMode      search.MSAMode
	PairMode     search.PairMode
	UseTemplates bool
	// ModelType must already be resolved (not auto).
	ModelType    features.ModelType
	IsComplex    bool
	RankBy       RankBy
	Seed         int64
	StopAtScore  float64
	KeepExisting bool
	Zip          bool
	// BibtexPath is bundled into every zip.
	BibtexPath string
}

// Deps are the collaborators of a run. Templates and Relaxer may be nil.
type Deps struct {
	Searcher  search.Searcher
	Templates template.Featurizer
	Runners   []predictor.Runner
	Relaxer   relax.Relaxer
	Log       zerolog.Logger
	Metrics   *metric.Client
}

// Summary counts what happened to the jobs of a run.
type Summary struct {
	Done    int
	Skipped int
	Failed  int
}

// Run processes qs in order. Failed jobs are logged and counted; Run only
// returns an error when ctx is cancelled, checked between jobs.
func Run(ctx context.Context, qs []query.Query, opt Options, deps Deps, wm *Watermark) (Summary, error) {
	if deps.Metrics == nil {
		deps.Metrics = metric.Nop()
	}
	log := deps.Log
	var sum Summary
	for i, q := range qs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		job := query.SafeFilename(q.JobName)
		jlog := log.With().Str("job", job).Logger()
		if opt.KeepExisting {
			if marker, done := writers.Done(opt.ResultDir, job); done {
				jlog.Info().Str("marker", marker).Msg("skipping, already done")
				sum.Skipped++
				continue
			}
		}
		jlog.Info().Msgf("query %d/%d: %s (length %d)", i+1, len(qs), job, q.TotalLength())

		stage, err := runJob(ctx, q, job, opt, deps, wm, jlog)
		status := "done"
		if err != nil {
			status = "failed"
			sum.Failed++
			switch {
			case errors.Is(err, predictor.ErrResourceExhausted):
				jlog.Error().Err(err).Str("stage", stage).Msg("could not predict, not enough accelerator memory?")
			default:
				jlog.Error().Err(err).Str("stage", stage).Msg("job failed")
			}
		} else {
			sum.Done++
		}
		deps.Metrics.Incr(metric.JobCount, metric.Tag(metric.TagStatus, status), metric.Tag(metric.TagStage, stage))
	}
	log.Info().Int("done", sum.Done).Int("skipped", sum.Skipped).Int("failed", sum.Failed).Msg("run finished")
	return sum, nil
}

// runJob returns the stage it stopped in.
func runJob(ctx context.Context, q query.Query, job string, opt Options, deps Deps, wm *Watermark, log zerolog.Logger) (string, error) {
	in, err := alignments(ctx, q, job, opt, deps, log)
	if err != nil {
		return "msa", err
	}
	text, err := msa.Serialize(in.Unpaired, in.Paired, in.Set)
	if err != nil {
		return "msa", err
	}
	if _, err := writers.WriteA3M(opt.ResultDir, job, text); err != nil {
		return "msa", err
	}

	mode := features.SelectMode(in.Set.NumChains(), opt.ModelType)
	log.Debug().Stringer("mode", mode).Msg("building features")
	f, err := features.Build(in, mode)
	if err != nil {
		return "features", err
	}

	lengths := in.Set.Lengths()
	total := 0
	for _, l := range lengths {
		total += l
	}
	outs, err := PredictStructure(ctx, f, deps.Runners, PredictOptions{
		IsComplex:    opt.IsComplex,
		ModelType:    opt.ModelType,
		UseTemplates: opt.UseTemplates,
		Lengths:      lengths,
		CropLen:      wm.Observe(total),
		RankBy:       opt.RankBy,
		Seed:         opt.Seed,
		StopAtScore:  opt.StopAtScore,
		Relaxer:      deps.Relaxer,
	}, log, deps.Metrics)
	if err != nil {
		return "predict", err
	}

	if err := writeOutputs(opt.ResultDir, job, outs); err != nil {
		return "write", err
	}
	if opt.Zip {
		if _, err := writers.Bundle(opt.ResultDir, job, opt.BibtexPath); err != nil {
			return "write", err
		}
	} else if err := writers.MarkDone(opt.ResultDir, job); err != nil {
		return "write", err
	}
	return "done", nil
}

func alignments(ctx context.Context, q query.Query, job string, opt Options, deps Deps, log zerolog.Logger) (features.Input, error) {
	if q.A3M != nil {
		d, err := msa.Deserialize(strings.Join(q.A3M, "\n"), q.Chains)
		if err != nil {
			return features.Input{}, err
		}
		if d.Legacy {
			log.Debug().Msg("alignment without header, reading as single chain")
		}
		return features.Input{Set: d.Set, Unpaired: d.Unpaired, Paired: d.Paired}, nil
	}
	set := msa.Unique(q.Chains)
	deps.Metrics.Incr(metric.SearchCount)
	al, err := search.Resolve(ctx, deps.Searcher, deps.Templates, set, search.Options{
		MSAMode:      opt.MSAMode,
		PairMode:     opt.PairMode,
		UseTemplates: opt.UseTemplates,
		Workdir:      filepath.Join(opt.ResultDir, job),
	}, log)
	if err != nil {
		return features.Input{}, fmt.Errorf("could not get alignments/templates: %w", err)
	}
	return features.Input{Set: set, Unpaired: al.Unpaired, Paired: al.Paired, Templates: al.Templates}, nil
}

func writeOutputs(dir, job string, outs []ModelOutput) error {
	for _, o := range outs {
		if _, err := writers.WriteStructure(dir, job, o.Model, o.Rank, false, o.Unrelaxed); err != nil {
			return err
		}
		if o.Relaxed != "" {
			if _, err := writers.WriteStructure(dir, job, o.Model, o.Rank, true, o.Relaxed); err != nil {
				return err
			}
		}
		_, err := writers.WriteScores(dir, api.ScoresV1{
			JobName:   job,
			Model:     o.Model,
			Rank:      o.Rank,
			MeanPLDDT: o.MeanPLDDT,
			PTM:       o.PTM,
			PLDDT:     o.PLDDT,
			PAE:       o.PAE,
			Seconds:   o.Duration.Seconds(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
