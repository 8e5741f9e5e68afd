// internal/writers/artifacts.go
package writers

import (
	"fmt"
	"os"
	"path/filepath"

	"foldrun/internal/jsonutil"
	"foldrun/pkg/api"
)

const (
	ConfigFile   = "config.json"
	doneSuffix   = ".done.txt"
	bundleSuffix = ".result.zip"
)

// StructureName is the file name of a ranked structure.
func StructureName(job, model string, rank int, relaxed bool) string {
	kind := "unrelaxed"
	if relaxed {
		kind = "relaxed"
	}
	return fmt.Sprintf("%s_%s_%s_rank_%d.pdb", job, kind, model, rank)
}

// ScoresName is the file name of a ranked model's scores.
func ScoresName(job, model string, rank int) string {
	return fmt.Sprintf("%s_unrelaxed_%s_rank_%d_scores.json", job, model, rank)
}

// WriteStructure writes a ranked PDB and returns its path.
func WriteStructure(dir, job, model string, rank int, relaxed bool, pdb string) (string, error) {
	p := filepath.Join(dir, StructureName(job, model, rank, relaxed))
	return p, os.WriteFile(p, []byte(pdb), 0o644)
}

// WriteScores writes s as the scores file of its model.
func WriteScores(dir string, s api.ScoresV1) (string, error) {
	p := filepath.Join(dir, ScoresName(s.JobName, s.Model, s.Rank))
	return p, jsonutil.WriteFile(p, s)
}

// WriteA3M writes the serialized alignment of a job.
func WriteA3M(dir, job, text string) (string, error) {
	p := filepath.Join(dir, job+".a3m")
	return p, os.WriteFile(p, []byte(text), 0o644)
}

// WriteConfig writes the run summary.
func WriteConfig(dir string, c api.RunConfigV1) (string, error) {
	p := filepath.Join(dir, ConfigFile)
	return p, jsonutil.WriteFile(p, c)
}

// MarkDone records that a job finished without bundling.
func MarkDone(dir, job string) error {
	return os.WriteFile(filepath.Join(dir, job+doneSuffix), nil, 0o644)
}

// BundlePath is where Bundle writes the archive of a job.
func BundlePath(dir, job string) string {
	return filepath.Join(dir, job+bundleSuffix)
}

// Done reports whether a job already finished, and which marker says so.
func Done(dir, job string) (string, bool) {
	for _, p := range []string{BundlePath(dir, job), filepath.Join(dir, job+doneSuffix)} {
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return filepath.Base(p), true
		}
	}
	return "", false
}
