// internal/cli/options_test.go
package cli

import (
	"errors"
	"flag"
	"io"
	"reflect"
	"testing"
)

func newFS() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func mustParse(t *testing.T, args ...string) Options {
	t.Helper()
	opts, err := ParseArgs(newFS(), args)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	return opts
}

func TestDefaults(t *testing.T) {
	o := mustParse(t, "queries.fasta", "out")
	if o.Input != "queries.fasta" || o.ResultDir != "out" {
		t.Errorf("positionals: %+v", o)
	}
	if o.MSAMode != "mmseqs2_uniref_env" || o.PairMode != "unpaired+paired" || o.ModelType != "auto" {
		t.Errorf("modes: %+v", o)
	}
	if o.NumModels != 5 || o.NumRecycle != 3 || o.RecompilePadding != 1.1 || o.StopAtScore != 100 {
		t.Errorf("model defaults: %+v", o)
	}
	if !reflect.DeepEqual(o.ModelOrder, []int{3, 4, 5, 1, 2}) {
		t.Errorf("model order %v", o.ModelOrder)
	}
	if o.SortQueriesBy != "length" || o.RankBy != "auto" || o.Zip || o.Overwrite {
		t.Errorf("job defaults: %+v", o)
	}
}

func TestFlagsOK(t *testing.T) {
	o := mustParse(t,
		"--msa-mode", "single_sequence",
		"--pair-mode", "unpaired",
		"--model-type", "AlphaFold2-multimer",
		"--num-models", "2",
		"--model-order", "1,2",
		"--stop-at-score", "85",
		"--rank", "ptmscore",
		"--templates", "--amber", "--zip", "--overwrite",
		"in.csv", "out",
	)
	if o.MSAMode != "single_sequence" || o.PairMode != "unpaired" || o.NumModels != 2 {
		t.Errorf("bad parse %+v", o)
	}
	if !o.Templates || !o.Amber || !o.Zip || !o.Overwrite || o.StopAtScore != 85 {
		t.Errorf("bad bools %+v", o)
	}
}

func TestVersionSkipsValidation(t *testing.T) {
	o := mustParse(t, "--version")
	if !o.Version {
		t.Fatalf("want version")
	}
}

func TestHelp(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{"-h"})
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("want ErrHelp, got %v", err)
	}
}

func TestErrors(t *testing.T) {
	cases := map[string][]string{
		"missing result dir": {"in.fasta"},
		"extra positional":   {"a", "b", "c"},
		"bad msa mode":       {"--msa-mode", "jackhmmer", "in", "out"},
		"bad pair mode":      {"--pair-mode", "both", "in", "out"},
		"bad model type":     {"--model-type", "rosetta", "in", "out"},
		"bad rank":           {"--rank", "tm", "in", "out"},
		"too many models":    {"--num-models", "6", "in", "out"},
		"no models":          {"--num-models", "0", "in", "out"},
		"short order":        {"--model-order", "1,2", "--num-models", "3", "in", "out"},
		"repeated order":     {"--model-order", "1,1,2,3,4", "in", "out"},
		"order out of range": {"--model-order", "0,1", "--num-models", "1", "in", "out"},
		"low padding":        {"--recompile-padding", "0.5", "in", "out"},
		"bad log level":      {"--log-level", "trace", "in", "out"},
	}
	for name, args := range cases {
		if _, err := ParseArgs(newFS(), args); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
