// core/msa/set.go
package msa

import "github.com/emirpasic/gods/maps/linkedhashmap"

// SequenceSet is the distinct chain sequences of a query in first-seen
// order, with the number of copies of each.
type SequenceSet struct {
	Seqs        []string
	Cardinality []int
}

// Unique groups chains into a SequenceSet.
func Unique(chains []string) SequenceSet {
	counts := linkedhashmap.New()
	for _, c := range chains {
		n, _ := counts.Get(c)
		k, _ := n.(int)
		counts.Put(c, k+1)
	}
	set := SequenceSet{
		Seqs:        make([]string, 0, counts.Size()),
		Cardinality: make([]int, 0, counts.Size()),
	}
	it := counts.Iterator()
	for it.Next() {
		set.Seqs = append(set.Seqs, it.Key().(string))
		set.Cardinality = append(set.Cardinality, it.Value().(int))
	}
	return set
}

// NumChains is the total chain count (sum of cardinalities).
func (s SequenceSet) NumChains() int {
	n := 0
	for _, c := range s.Cardinality {
		n += c
	}
	return n
}

// Expanded returns one sequence per chain, copies adjacent.
func (s SequenceSet) Expanded() []string {
	out := make([]string, 0, s.NumChains())
	for i, seq := range s.Seqs {
		for j := 0; j < s.Cardinality[i]; j++ {
			out = append(out, seq)
		}
	}
	return out
}

// Lengths returns the per-chain lengths of Expanded().
func (s SequenceSet) Lengths() []int {
	out := make([]int, 0, s.NumChains())
	for _, seq := range s.Expanded() {
		out = append(out, len(seq))
	}
	return out
}

// TotalLength is the residue count over all chains.
func (s SequenceSet) TotalLength() int {
	n := 0
	for i, seq := range s.Seqs {
		n += len(seq) * s.Cardinality[i]
	}
	return n
}

// IsHomooligomer reports a single unique sequence present more than once.
func (s SequenceSet) IsHomooligomer() bool {
	return len(s.Seqs) == 1 && s.Cardinality[0] > 1
}

// IsSingleProtein reports exactly one chain.
func (s SequenceSet) IsSingleProtein() bool {
	return len(s.Seqs) == 1 && s.Cardinality[0] == 1
}

// unit returns a copy with every cardinality set to 1.
func (s SequenceSet) unit() SequenceSet {
	ones := make([]int, len(s.Seqs))
	for i := range ones {
		ones[i] = 1
	}
	return SequenceSet{Seqs: s.Seqs, Cardinality: ones}
}
