// core/msa/serialize.go
package msa

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// syntheticHeaderBase numbers the query-only rows generated for
// single-sequence and homooligomer alignments (">101", ">102", ...).
const syntheticHeaderBase = 101

// Decoded is the structured form of a serialized alignment. For a
// homooligomer the first body row pair is dropped as the synthetic paired
// row only when it repeats the query row; otherwise it is kept as the first
// unpaired hit.
type Decoded struct {
	Set SequenceSet
	// Unpaired holds one block per unique sequence.
	Unpaired []string
	// Paired holds one block per unique sequence, or one synthetic block per
	// copy for homooligomers. Nil when pairing is impossible or absent.
	Paired []string

	IsHomooligomer  bool
	IsSingleProtein bool
	// Legacy is set when the blob had no length/cardinality header.
	Legacy bool
}

// Serialize writes the header line and the combined alignment. Identical
// chain copies are stored once: the body is built with cardinality 1.
func Serialize(unpaired, paired []string, set SequenceSet) (string, error) {
	lens := make([]string, len(set.Seqs))
	cards := make([]string, len(set.Seqs))
	for i, s := range set.Seqs {
		lens[i] = strconv.Itoa(len(s))
		cards[i] = strconv.Itoa(set.Cardinality[i])
	}
	body, err := Combine(set.unit(), paired, unpaired)
	if err != nil {
		return "", err
	}
	return "#" + strings.Join(lens, ",") + "\t" + strings.Join(cards, ",") + "\n" + body, nil
}

// HasHeader reports whether text starts with a length/cardinality header.
func HasHeader(text string) bool {
	first, _, _ := strings.Cut(text, "\n")
	first = strings.TrimSuffix(first, "\r")
	return strings.HasPrefix(first, "#") && len(strings.Split(first[1:], "\t")) == 2
}

// ParseHeader returns the per-sequence lengths and cardinalities of a
// serialized blob's first line.
func ParseHeader(line string) (lens, cards []int, err error) {
	if !strings.HasPrefix(line, "#") {
		return nil, nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}
	fields := strings.Split(line[1:], "\t")
	if len(fields) != 2 {
		return nil, nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}
	if lens, err = parseInts(fields[0]); err != nil {
		return nil, nil, err
	}
	if cards, err = parseInts(fields[1]); err != nil {
		return nil, nil, err
	}
	if len(lens) != len(cards) {
		return nil, nil, fmt.Errorf("%w: %d lengths but %d cardinalities", ErrMalformedHeader, len(lens), len(cards))
	}
	for i := range lens {
		if lens[i] <= 0 || cards[i] <= 0 {
			return nil, nil, fmt.Errorf("%w: non-positive entry in %q", ErrMalformedHeader, line)
		}
	}
	return lens, cards, nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
		out[i] = v
	}
	return out, nil
}

// Deserialize decodes a serialized alignment. Without a header the whole
// text is taken as the unpaired alignment of query, which must then be a
// single chain.
func Deserialize(text string, query []string) (*Decoded, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty alignment", ErrUnknownFormat)
	}
	if !HasHeader(text) {
		if len(query) != 1 {
			return nil, fmt.Errorf("%w: alignment without header needs exactly one query chain, got %d", ErrUnknownFormat, len(query))
		}
		return &Decoded{
			Set:             SequenceSet{Seqs: []string{query[0]}, Cardinality: []int{1}},
			Unpaired:        []string{strings.Join(lines, "\n")},
			IsSingleProtein: true,
			Legacy:          true,
		}, nil
	}
	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: header without query rows", ErrUnknownFormat)
	}
	lens, cards, err := ParseHeader(lines[0])
	if err != nil {
		return nil, err
	}

	d := &Decoded{
		Set: SequenceSet{Seqs: make([]string, len(lens)), Cardinality: cards},
	}
	d.IsHomooligomer = d.Set.IsHomooligomer()
	d.IsSingleProtein = d.Set.IsSingleProtein()

	total := 0
	for _, l := range lens {
		total += l
	}
	if len(lines[2]) < total {
		return nil, fmt.Errorf("%w: query row has %d columns, header expects %d", ErrMalformedHeader, len(lines[2]), total)
	}
	// Chain j's reference is its slice of the first row that has residues
	// there: the paired query row, or the chain's own padded query row.
	for i := 2; i < len(lines); i += 2 {
		parts, hasAA := splitRow(lines[i], lens)
		for j, part := range parts {
			if d.Set.Seqs[j] == "" && hasAA[j] {
				d.Set.Seqs[j] = stripInsertions(part)
			}
		}
	}
	for j, s := range d.Set.Seqs {
		if s == "" {
			return nil, fmt.Errorf("%w: no query row for chain %d", ErrUnknownFormat, j+1)
		}
	}

	paired := make([]strings.Builder, len(lens))
	unpaired := make([]strings.Builder, len(lens))
	anyPaired := false

	// A homooligomer's synthetic paired row repeats the reference row; skip it.
	offset := 0
	if d.IsHomooligomer && len(lines) > 4 && lines[4] == lines[2] {
		offset = 2
	}
	for i := 1 + offset; i < len(lines); i += 2 {
		if i+1 >= len(lines) {
			return nil, fmt.Errorf("%w: header %q has no sequence row", ErrUnknownFormat, lines[i])
		}
		header, row := lines[i], lines[i+1]
		parts, hasAA := splitRow(row, lens)

		if !d.IsSingleProtein && !d.IsHomooligomer && all(hasAA) {
			names := strings.Split(strings.ReplaceAll(header, ">", ""), "\t")
			for j := range parts {
				name := strings.ReplaceAll(header, ">", "")
				if j < len(names) {
					name = names[j]
				}
				paired[j].WriteString(">" + name + "\n" + parts[j] + "\n")
			}
			anyPaired = true
			continue
		}
		for j, part := range parts {
			if hasAA[j] {
				unpaired[j].WriteString(header + "\n" + part + "\n")
			}
		}
	}

	d.Unpaired = make([]string, len(lens))
	for j := range unpaired {
		d.Unpaired[j] = unpaired[j].String()
	}
	switch {
	case d.IsHomooligomer:
		d.Paired = SyntheticPaired(d.Set.Seqs[0], cards[0])
	case d.IsSingleProtein, !anyPaired:
		d.Paired = nil
	default:
		d.Paired = make([]string, len(lens))
		for j := range paired {
			d.Paired[j] = paired[j].String()
		}
	}
	return d, nil
}

// SyntheticPaired returns n query-only blocks for a homooligomer.
func SyntheticPaired(seq string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf(">%d\n%s\n", syntheticHeaderBase+i, seq)
	}
	return out
}

// SingleSequence returns a query-only alignment block for each sequence.
func SingleSequence(seqs []string) []string {
	out := make([]string, len(seqs))
	for i, s := range seqs {
		out[i] = fmt.Sprintf(">%d\n%s", syntheticHeaderBase+i, s)
	}
	return out
}

// splitRow cuts a combined row into per-chain parts by reference length.
// Lowercase insertions are kept in the part but do not count towards the
// length; hasAA reports whether a part holds any aligned residue.
func splitRow(row string, lens []int) (parts []string, hasAA []bool) {
	parts = make([]string, len(lens))
	hasAA = make([]bool, len(lens))
	pos := 0
	for n, want := range lens {
		var b strings.Builder
		got := 0
		for ; pos < len(row); pos++ {
			if got == want {
				break
			}
			c := rune(row[pos])
			b.WriteByte(row[pos])
			if unicode.IsLower(c) {
				continue
			}
			if c != '-' {
				hasAA[n] = true
			}
			got++
		}
		parts[n] = b.String()
	}
	return parts, hasAA
}

func stripInsertions(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLower(r) {
			return -1
		}
		return r
	}, s)
}

func all(bs []bool) bool {
	for _, b := range bs {
		if !b {
			return false
		}
	}
	return true
}
