// core/query/load.go
package query

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"foldrun-core/fasta"
)

// Load reads jobs from a .fasta, .a3m, .csv or .tsv file, or from a
// directory of .fasta/.a3m files. Warnings describe skipped content,
// including jobs dropped for invalid sequences.
func Load(path string) ([]Query, []string, error) {
	qs, warns, err := load(path)
	if err != nil {
		return nil, warns, err
	}
	kept := qs[:0]
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			warns = append(warns, fmt.Sprintf("skipping %s: %v", q.JobName, err))
			continue
		}
		kept = append(kept, q)
	}
	if len(kept) == 0 {
		return nil, warns, fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}
	return kept, warns, nil
}

func load(path string) ([]Query, []string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if st.IsDir() {
		return loadDir(path)
	}
	var qs []Query
	switch ext := inputExt(path); ext {
	case ".csv", ".tsv":
		qs, err = loadTable(path, ext == ".tsv")
	case ".a3m":
		var q Query
		q, err = loadA3M(path)
		qs = []Query{q}
	case ".fasta", ".fa", ".faa":
		qs, err = loadFasta(path)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, nil, err
	}
	if len(qs) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}
	return qs, nil, nil
}

// inputExt is the lowercase extension ignoring a trailing .gz.
func inputExt(path string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".gz")))
}

func stem(path string) string {
	base := filepath.Base(strings.TrimSuffix(path, ".gz"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func splitChains(seq string) []string {
	return strings.Split(Normalize(seq), ":")
}

func loadTable(path string, tab bool) ([]Query, error) {
	rc, err := fasta.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	r := csv.NewReader(rc)
	if tab {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	idCol, seqCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "id":
			idCol = i
		case "sequence":
			seqCol = i
		}
	}
	if idCol < 0 || seqCol < 0 {
		return nil, fmt.Errorf("%s: header needs \"id\" and \"sequence\" columns", path)
	}
	var qs []Query
	for ln := 2; ; ln++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, ln, err)
		}
		if len(rec) <= idCol || len(rec) <= seqCol {
			return nil, fmt.Errorf("%s:%d bad field count", path, ln)
		}
		qs = append(qs, Query{
			JobName: strings.TrimSpace(rec[idCol]),
			Chains:  splitChains(strings.TrimSpace(rec[seqCol])),
		})
	}
	return qs, nil
}

func loadA3M(path string) (Query, error) {
	text, err := fasta.ReadText(path)
	if err != nil {
		return Query{}, err
	}
	seqs, _ := fasta.Sequences(text)
	if len(seqs) == 0 {
		return Query{}, fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}
	return Query{JobName: stem(path), Chains: []string{seqs[0]}, A3M: []string{text}}, nil
}

func loadFasta(path string) ([]Query, error) {
	text, err := fasta.ReadText(path)
	if err != nil {
		return nil, err
	}
	var qs []Query
	for _, rec := range fasta.Parse(text) {
		qs = append(qs, Query{JobName: rec.Description, Chains: splitChains(rec.Seq)})
	}
	return qs, nil
}

func loadDir(dir string) ([]Query, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var qs []Query
	var warns []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		ext := inputExt(path)
		if ext != ".a3m" && ext != ".fasta" {
			warns = append(warns, fmt.Sprintf("non-fasta/a3m file in input directory: %s", path))
			continue
		}
		text, err := fasta.ReadText(path)
		if err != nil {
			return nil, warns, err
		}
		seqs, _ := fasta.Sequences(text)
		if len(seqs) == 0 {
			warns = append(warns, fmt.Sprintf("%s is empty", path))
			continue
		}
		q := Query{JobName: stem(path), Chains: []string{Normalize(seqs[0])}}
		if ext == ".a3m" {
			q.A3M = []string{text}
		} else if len(seqs) > 1 {
			warns = append(warns, fmt.Sprintf("more than one sequence in %s, ignoring all but the first sequence", path))
		}
		qs = append(qs, q)
	}
	if len(qs) == 0 {
		return nil, warns, fmt.Errorf("%s: %w", dir, ErrEmptyInput)
	}
	return qs, warns, nil
}
