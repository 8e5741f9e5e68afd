// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"foldrun-core/features"
	"foldrun-core/query"
	"foldrun/internal/cli"
	"foldrun/internal/cmdutil"
	"foldrun/internal/config"
	"foldrun/internal/metric"
	"foldrun/internal/pipeline"
	"foldrun/internal/search"
	"foldrun/internal/version"
	"foldrun/internal/writers"
	"foldrun/pkg/api"
)

// usage prints the flag help and maps write failures to exit codes.
func usage(fs *flag.FlagSet, outw *bufio.Writer, stderr io.Writer, code int) int {
	fs.SetOutput(outw)
	fs.Usage()
	if e := outw.Flush(); writers.IsBrokenPipe(e) {
		return 0
	} else if e != nil {
		_, _ = fmt.Fprintln(stderr, e)
		return 3
	}
	return code
}

// RunContext is the whole command: parse, load, wire collaborators, run.
// Exit codes: 0 ok, 2 usage or setup error, 3 failed jobs or output error,
// 130 cancelled.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("foldrun")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		_, _ = cli.ParseArgs(fs, []string{"-h"})
		return usage(fs, outw, stderr, 0)
	}
	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return usage(fs, outw, stderr, 0)
		}
		_, _ = fmt.Fprintln(stderr, err)
		return usage(fs, outw, stderr, 2)
	}
	if opts.Version {
		_, _ = fmt.Fprintf(outw, "foldrun version %s\n", version.String())
		if e := outw.Flush(); e != nil && !writers.IsBrokenPipe(e) {
			_, _ = fmt.Fprintln(stderr, e)
			return 3
		}
		return 0
	}

	log, err := cmdutil.NewLogger(stderr, opts.LogLevel, opts.Quiet)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Error().Err(err).Msg("configuration")
		return 2
	}
	return run(parent, opts, cfg, log)
}

func run(ctx context.Context, opts cli.Options, cfg config.Config, log zerolog.Logger) int {
	log.Info().Str("version", version.String()).Msg("starting foldrun")

	qs, warnings, err := query.Load(opts.Input)
	if err != nil {
		log.Error().Err(err).Str("input", opts.Input).Msg("could not read queries")
		return 2
	}
	cmdutil.Warnings(log, warnings)
	query.Sort(qs, query.SortBy(opts.SortQueriesBy), opts.RandomSeed)
	log.Info().Int("queries", len(qs)).Msg("found queries")

	isComplex := query.AnyComplex(qs)
	modelType := features.ResolveModelType(isComplex, features.ModelType(opts.ModelType))

	if err := os.MkdirAll(opts.ResultDir, 0o755); err != nil {
		log.Error().Err(err).Msg("could not create result directory")
		return 2
	}

	runID := uuid.NewString()
	metrics, err := metric.New(cfg.Metrics.Addr, log, append(cfg.Metrics.Tags, metric.Tag(metric.TagRun, runID))...)
	if err != nil {
		log.Warn().Err(err).Msg("metrics disabled")
		metrics = metric.Nop()
	}
	defer metrics.Close()

	deps, closeDeps, err := collaborators(ctx, opts, cfg, modelType, needsSearch(qs), log)
	if err != nil {
		log.Error().Err(err).Msg("setup")
		return 2
	}
	defer closeDeps()
	deps.Metrics = metrics

	if _, err := writers.WriteConfig(opts.ResultDir, runConfig(runID, len(qs), modelType, opts, cfg)); err != nil {
		log.Error().Err(err).Msg("could not write run configuration")
		return 3
	}
	msaMode := search.MSAMode(opts.MSAMode)
	bibtex, err := writers.WriteBibtex(opts.ResultDir, writers.Citation{
		Multimer:     modelType == features.ModelMultimer,
		UseMSA:       msaMode != search.SingleSeq,
		UseEnv:       msaMode == search.MMseqs2UniRefEnv,
		UseTemplates: opts.Templates,
		UseAmber:     opts.Amber,
	})
	if err != nil {
		log.Error().Err(err).Msg("could not write citations")
		return 3
	}

	sum, err := pipeline.Run(ctx, qs, pipeline.Options{
		ResultDir:    opts.ResultDir,
		MSAMode:      msaMode,
		PairMode:     search.PairMode(opts.PairMode),
		UseTemplates: opts.Templates,
		ModelType:    modelType,
		IsComplex:    isComplex,
		RankBy:       pipeline.RankBy(opts.RankBy),
		Seed:         opts.RandomSeed,
		StopAtScore:  opts.StopAtScore,
		KeepExisting: !opts.Overwrite,
		Zip:          opts.Zip,
		BibtexPath:   bibtex,
	}, deps, pipeline.NewWatermark(opts.RecompilePadding))
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("run interrupted")
		return 130
	case sum.Failed > 0:
		return 3
	}
	return 0
}

func runConfig(runID string, n int, modelType features.ModelType, opts cli.Options, cfg config.Config) api.RunConfigV1 {
	return api.RunConfigV1{
		RunID:            runID,
		NumQueries:       n,
		UseTemplates:     opts.Templates,
		UseAmber:         opts.Amber,
		MSAMode:          opts.MSAMode,
		ModelType:        string(modelType),
		NumModels:        opts.NumModels,
		NumRecycles:      opts.NumRecycle,
		ModelOrder:       opts.ModelOrder,
		KeepExisting:     !opts.Overwrite,
		RankMode:         opts.RankBy,
		PairMode:         opts.PairMode,
		PredictorURL:     cfg.Predictor.URL,
		StopAtScore:      opts.StopAtScore,
		RecompilePadding: opts.RecompilePadding,
		Commit:           version.Commit,
		Version:          version.Version,
	}
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
