// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"foldrun/internal/version"
)

// Options holds all CLI flags and arguments.
type Options struct {
	// Positional
	Input     string
	ResultDir string

	// Alignments
	MSAMode   string
	PairMode  string
	Templates bool

	// Models
	ModelType        string
	NumModels        int
	NumRecycle       int
	ModelOrder       []int
	RecompilePadding float64
	StopAtScore      float64
	RankBy           string
	Amber            bool
	RandomSeed       int64

	// Jobs
	SortQueriesBy string
	Zip           bool
	Overwrite     bool

	// Ambient
	ConfigFile string
	LogLevel   string
	Quiet      bool

	Version bool
}

var (
	msaModes   = []string{"mmseqs2_uniref_env", "mmseqs2_uniref", "single_sequence"}
	pairModes  = []string{"unpaired+paired", "paired", "unpaired", "none"}
	modelTypes = []string{"auto", "AlphaFold2-ptm", "AlphaFold2-multimer"}
	rankModes  = []string{"auto", "plddt", "ptmscore"}
	sortModes  = []string{"length", "random", "none"}
	logLevels  = []string{"debug", "info", "warn", "error"}
)

const maxModels = 5

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: batch protein structure prediction

Version: %s

Usage of %s: [flags] <input> <result-dir>

  <input>       .fasta/.a3m/.csv/.tsv file or a directory of .fasta/.a3m files
  <result-dir>  where structures, alignments and scores are written

`, name, version.String(), name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool
	var order string

	fs.StringVar(&opt.MSAMode, "msa-mode", msaModes[0], "alignment source: "+strings.Join(msaModes, " | ")+" ["+msaModes[0]+"]")
	fs.StringVar(&opt.PairMode, "pair-mode", pairModes[0], "complex alignments: "+strings.Join(pairModes, " | ")+" ["+pairModes[0]+"]")
	fs.BoolVar(&opt.Templates, "templates", false, "search structural templates [false]")

	fs.StringVar(&opt.ModelType, "model-type", "auto", "model family: "+strings.Join(modelTypes, " | ")+" [auto]")
	fs.IntVar(&opt.NumModels, "num-models", maxModels, "number of models to run (1-5) [5]")
	fs.IntVar(&opt.NumRecycle, "num-recycle", 3, "recycles per model [3]")
	fs.StringVar(&order, "model-order", "3,4,5,1,2", "order models run in [3,4,5,1,2]")
	fs.Float64Var(&opt.RecompilePadding, "recompile-padding", 1.1, "pad batch length by this factor to avoid recompiling [1.1]")
	fs.Float64Var(&opt.StopAtScore, "stop-at-score", 100, "skip remaining models of a job once mean pLDDT exceeds this [100]")
	fs.StringVar(&opt.RankBy, "rank", "auto", "rank models by: "+strings.Join(rankModes, " | ")+" [auto]")
	fs.BoolVar(&opt.Amber, "amber", false, "relax the ranked structures [false]")
	fs.Int64Var(&opt.RandomSeed, "random-seed", 0, "seed for feature processing and random query order [0]")

	fs.StringVar(&opt.SortQueriesBy, "sort-queries-by", "length", "job order: "+strings.Join(sortModes, " | ")+" [length]")
	fs.BoolVar(&opt.Zip, "zip", false, "bundle each job's results into <job>.result.zip [false]")
	fs.BoolVar(&opt.Overwrite, "overwrite", false, "recompute jobs that already have results [false]")

	fs.StringVar(&opt.ConfigFile, "config", "", "YAML configuration file (endpoints, metrics)")
	fs.StringVar(&opt.LogLevel, "log-level", "info", "log level: "+strings.Join(logLevels, " | ")+" [info]")
	fs.BoolVar(&opt.Quiet, "quiet", false, "only log warnings and errors [false]")

	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	args := fs.Args()
	if len(args) != 2 {
		return opt, fmt.Errorf("expected <input> and <result-dir>, got %d argument(s)", len(args))
	}
	opt.Input, opt.ResultDir = args[0], args[1]

	var err error
	if opt.ModelOrder, err = parseOrder(order); err != nil {
		return opt, err
	}
	for _, c := range []struct {
		flag, value string
		allowed     []string
	}{
		{"msa-mode", opt.MSAMode, msaModes},
		{"pair-mode", opt.PairMode, pairModes},
		{"model-type", opt.ModelType, modelTypes},
		{"rank", opt.RankBy, rankModes},
		{"sort-queries-by", opt.SortQueriesBy, sortModes},
		{"log-level", opt.LogLevel, logLevels},
	} {
		if !contains(c.allowed, c.value) {
			return opt, fmt.Errorf("invalid --%s %q (want %s)", c.flag, c.value, strings.Join(c.allowed, " | "))
		}
	}
	if opt.NumModels < 1 || opt.NumModels > maxModels {
		return opt, errors.New("--num-models must be between 1 and 5")
	}
	if opt.NumModels > len(opt.ModelOrder) {
		return opt, fmt.Errorf("--model-order lists %d models, --num-models wants %d", len(opt.ModelOrder), opt.NumModels)
	}
	if opt.NumRecycle < 0 {
		return opt, errors.New("--num-recycle must be ≥ 0")
	}
	if opt.RecompilePadding < 1 {
		return opt, errors.New("--recompile-padding must be ≥ 1")
	}
	return opt, nil
}

func parseOrder(s string) ([]int, error) {
	seen := map[int]bool{}
	var out []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 1 || n > maxModels {
			return nil, fmt.Errorf("invalid --model-order entry %q (want 1-5)", f)
		}
		if seen[n] {
			return nil, fmt.Errorf("--model-order repeats model %d", n)
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
