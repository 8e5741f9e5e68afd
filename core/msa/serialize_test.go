package msa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// residueContent keeps only the aligned residues of every row of a block.
func residueContent(block string) []string {
	var out []string
	for _, r := range seqRows(block) {
		var b strings.Builder
		for i := 0; i < len(r); i++ {
			if r[i] >= 'A' && r[i] <= 'Z' {
				b.WriteByte(r[i])
			}
		}
		out = append(out, b.String())
	}
	return out
}

func TestSerializeHeader(t *testing.T) {
	out, err := Serialize(hetUnpaired, hetPaired, hetSet)
	require.NoError(t, err)
	first, _, _ := strings.Cut(out, "\n")
	assert.Equal(t, "#3,2\t2,1", first)
	assert.True(t, HasHeader(out))
	// body is stored with cardinality 1
	for _, r := range seqRows(out) {
		assert.Len(t, r, 5)
	}
}

func TestRoundTripHeteromer(t *testing.T) {
	set := SequenceSet{Seqs: []string{"AAA", "CC"}, Cardinality: []int{2, 1}}
	paired := []string{">101\nAAA\n>p1\nAVA\n", ">102\nCC\n>p1\nCD\n"}
	unpaired := []string{">101\nAAA\n>u1\nAaVA\n", ">102\nCC\n>u2\nC-\n"}

	blob, err := Serialize(unpaired, paired, set)
	require.NoError(t, err)
	d, err := Deserialize(blob, nil)
	require.NoError(t, err)

	assert.Equal(t, set, d.Set)
	assert.False(t, d.IsHomooligomer)
	assert.False(t, d.IsSingleProtein)
	require.Len(t, d.Paired, 2)
	require.Len(t, d.Unpaired, 2)
	for j := range set.Seqs {
		assert.Equal(t, residueContent(paired[j]), residueContent(d.Paired[j]))
		assert.Equal(t, residueContent(unpaired[j]), residueContent(d.Unpaired[j]))
	}
	assert.Equal(t, unpaired[0], d.Unpaired[0])
}

func TestRoundTripUnpairedOnly(t *testing.T) {
	blob, err := Serialize(hetUnpaired, nil, hetSet)
	require.NoError(t, err)
	d, err := Deserialize(blob, nil)
	require.NoError(t, err)
	assert.Nil(t, d.Paired)
	assert.Equal(t, hetSet, d.Set)
	for j := range hetSet.Seqs {
		assert.Equal(t, residueContent(hetUnpaired[j]), residueContent(d.Unpaired[j]))
	}
}

func TestDeserializeUnpairedReferences(t *testing.T) {
	set := SequenceSet{Seqs: []string{"MKV", "GG"}, Cardinality: []int{1, 1}}
	unpaired := []string{">101\nMKV\n>u1\nMK-\n", ">102\nGG\n>u2\nG-\n"}
	blob, err := Serialize(unpaired, nil, set)
	require.NoError(t, err)
	d, err := Deserialize(blob, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"MKV", "GG"}, d.Set.Seqs)
	assert.Nil(t, d.Paired)
	assert.Equal(t, []string{"GG", "G"}, residueContent(d.Unpaired[1]))

	// a chain that never has residues has no reference
	_, err = Deserialize("#3,2\t1,1\n>101\nMKV--", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRoundTripHomooligomer(t *testing.T) {
	set := SequenceSet{Seqs: []string{"MKVLA"}, Cardinality: []int{3}}
	unpaired := []string{">101\nMKVLA\n>h1\nMKV-A\n"}
	blob, err := Serialize(unpaired, SyntheticPaired("MKVLA", 3), set)
	require.NoError(t, err)
	d, err := Deserialize(blob, nil)
	require.NoError(t, err)
	assert.True(t, d.IsHomooligomer)
	assert.Equal(t, set, d.Set)
	assert.Len(t, d.Paired, 3)
	assert.Equal(t, unpaired[0], d.Unpaired[0])
}

func TestDeserializeHomooligomerHeader(t *testing.T) {
	d, err := Deserialize("#5\t3\n>101\nMKVLA\n>101\nMKVLA\n>h1\nMKV-A", nil)
	require.NoError(t, err)
	assert.True(t, d.IsHomooligomer)
	assert.Equal(t, []string{"MKVLA"}, d.Set.Seqs)
	assert.Len(t, d.Set.Seqs[0], 5)
	require.Len(t, d.Paired, 3)
	assert.Equal(t, ">101\nMKVLA\n", d.Paired[0])
	assert.Equal(t, ">103\nMKVLA\n", d.Paired[2])
	assert.Equal(t, ">101\nMKVLA\n>h1\nMKV-A\n", d.Unpaired[0])
}

func TestDeserializeHomooligomerWithoutPairedRow(t *testing.T) {
	d, err := Deserialize("#5\t2\n>101\nMKVLA\n>h1\nMKV-A", nil)
	require.NoError(t, err)
	assert.Equal(t, ">101\nMKVLA\n>h1\nMKV-A\n", d.Unpaired[0])
	assert.Len(t, d.Paired, 2)
}

func TestDeserializeSingleProtein(t *testing.T) {
	d, err := Deserialize("#4\t1\n>101\nMKVL\n>h\nMK-L", nil)
	require.NoError(t, err)
	assert.True(t, d.IsSingleProtein)
	assert.Nil(t, d.Paired)
	assert.Equal(t, ">101\nMKVL\n>h\nMK-L\n", d.Unpaired[0])
}

func TestDeserializeLegacy(t *testing.T) {
	text := ">q\nMKV\n>h\nMK-"
	d, err := Deserialize(text, []string{"MKV"})
	require.NoError(t, err)
	assert.True(t, d.Legacy)
	assert.Equal(t, []string{text}, d.Unpaired)
	assert.Nil(t, d.Paired)
	assert.Equal(t, []int{1}, d.Set.Cardinality)

	_, err = Deserialize(text, []string{"MKV", "LL"})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	// a three-field comment is not a header
	d, err = Deserialize("#a\tb\tc\n>q\nMKV", []string{"MKV"})
	require.NoError(t, err)
	assert.True(t, d.Legacy)
}

func TestDeserializeErrors(t *testing.T) {
	_, err := Deserialize("#3\t1\n>101", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Deserialize("#3,x\t1,1\n>a\nAAAA", nil)
	assert.ErrorIs(t, err, ErrMalformedHeader)

	_, err = Deserialize("#3,2\t1\n>a\nAAAAA", nil)
	assert.ErrorIs(t, err, ErrMalformedHeader)

	_, err = Deserialize("#6\t1\n>a\nAAA", nil)
	assert.ErrorIs(t, err, ErrMalformedHeader)

	_, err = Deserialize("#3\t1\n>a\nAAA\n>dangling", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Deserialize("", []string{"A"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSplitRowPositional(t *testing.T) {
	parts, hasAA := splitRow("AbC-dD", []int{2, 2})
	assert.Equal(t, []string{"AbC", "-dD"}, parts)
	assert.Equal(t, []bool{true, true}, hasAA)

	parts, hasAA = splitRow("--CC", []int{2, 2})
	assert.Equal(t, []string{"--", "CC"}, parts)
	assert.Equal(t, []bool{false, true}, hasAA)

	// short rows leave trailing chains empty
	parts, hasAA = splitRow("AA", []int{2, 2})
	assert.Equal(t, []string{"AA", ""}, parts)
	assert.Equal(t, []bool{true, false}, hasAA)
}

func TestParseA3M(t *testing.T) {
	a := ParseA3M(">q\nMKV\n>h desc\nMaaK-v\n")
	require.Equal(t, 2, a.Depth())
	assert.Equal(t, []string{"MKV", "MK-"}, a.Rows)
	assert.Equal(t, []int{0, 2, 0}, a.Deletions[1])
	assert.Equal(t, "h desc", a.Descriptions[1])
}
