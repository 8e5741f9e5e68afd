// Package residue holds amino-acid and atom constants shared by feature
// construction and structure output.
package residue

// Restypes is the 20 standard amino acids in model order.
var Restypes = []byte("ARNDCQEGHILKMFPSTWYV")

const (
	// RestypeNum is the number of standard residue types.
	RestypeNum = 20
	// UnknownID is the model index of 'X'.
	UnknownID = 20
	// GapID is the HHblits index of '-'; also the MSA pad value.
	GapID = 21
	// AtomTypeNum is the number of heavy-atom slots per residue.
	AtomTypeNum = 37
)

// AtomTypes lists the atom37 slots in order.
var AtomTypes = []string{
	"N", "CA", "C", "CB", "O", "CG", "CG1", "CG2", "OG", "OG1",
	"SG", "CD", "CD1", "CD2", "ND1", "ND2", "OD1", "OD2", "SD", "CE",
	"CE1", "CE2", "CE3", "NE", "NE1", "NE2", "OE1", "OE2", "CH2", "NH1",
	"NH2", "OH", "CZ", "CZ2", "CZ3", "NZ", "OXT",
}

// OneToThree maps one-letter codes to PDB residue names.
var OneToThree = map[byte]string{
	'A': "ALA", 'R': "ARG", 'N': "ASN", 'D': "ASP", 'C': "CYS",
	'Q': "GLN", 'E': "GLU", 'G': "GLY", 'H': "HIS", 'I': "ILE",
	'L': "LEU", 'K': "LYS", 'M': "MET", 'F': "PHE", 'P': "PRO",
	'S': "SER", 'T': "THR", 'W': "TRP", 'Y': "TYR", 'V': "VAL",
}

// residueAtoms lists the heavy atoms present for each residue name.
var residueAtoms = map[string][]string{
	"ALA": {"C", "CA", "CB", "N", "O"},
	"ARG": {"C", "CA", "CB", "CG", "CD", "CZ", "N", "NE", "O", "NH1", "NH2"},
	"ASP": {"C", "CA", "CB", "CG", "N", "O", "OD1", "OD2"},
	"ASN": {"C", "CA", "CB", "CG", "N", "ND2", "O", "OD1"},
	"CYS": {"C", "CA", "CB", "N", "O", "SG"},
	"GLU": {"C", "CA", "CB", "CG", "CD", "N", "O", "OE1", "OE2"},
	"GLN": {"C", "CA", "CB", "CG", "CD", "N", "NE2", "O", "OE1"},
	"GLY": {"C", "CA", "N", "O"},
	"HIS": {"C", "CA", "CB", "CG", "CD2", "CE1", "N", "ND1", "NE2", "O"},
	"ILE": {"C", "CA", "CB", "CG1", "CG2", "CD1", "N", "O"},
	"LEU": {"C", "CA", "CB", "CG", "CD1", "CD2", "N", "O"},
	"LYS": {"C", "CA", "CB", "CG", "CD", "CE", "N", "NZ", "O"},
	"MET": {"C", "CA", "CB", "CG", "CE", "N", "O", "SD"},
	"PHE": {"C", "CA", "CB", "CG", "CD1", "CD2", "CE1", "CE2", "CZ", "N", "O"},
	"PRO": {"C", "CA", "CB", "CG", "CD", "N", "O"},
	"SER": {"C", "CA", "CB", "N", "O", "OG"},
	"THR": {"C", "CA", "CB", "CG2", "N", "O", "OG1"},
	"TRP": {"C", "CA", "CB", "CG", "CD1", "CD2", "CE2", "CE3", "CZ2", "CZ3", "CH2", "N", "NE1", "O"},
	"TYR": {"C", "CA", "CB", "CG", "CD1", "CD2", "CE1", "CE2", "CZ", "N", "O", "OH"},
	"VAL": {"C", "CA", "CB", "CG1", "CG2", "N", "O"},
}

// HHblitsAAToID maps alignment characters to HHblits indices.
var HHblitsAAToID = map[byte]int{
	'A': 0, 'B': 2, 'C': 1, 'D': 2, 'E': 3, 'F': 4, 'G': 5, 'H': 6,
	'I': 7, 'J': 20, 'K': 8, 'L': 9, 'M': 10, 'N': 11, 'O': 20, 'P': 12,
	'Q': 13, 'R': 14, 'S': 15, 'T': 16, 'U': 1, 'V': 17, 'W': 18, 'X': 20,
	'Y': 19, 'Z': 3, '-': 21,
}

// idToHHblitsAA is the inverse alphabet of HHblits indices.
var idToHHblitsAA = []byte("ACDEFGHIKLMNPQRSTVWYX-")

var (
	restypeOrder     = map[byte]int{}
	atomOrder        = map[string]int{}
	hhblitsToModel   []int
	standardAtomMask [][]float32
)

func init() {
	for i, r := range Restypes {
		restypeOrder[r] = i
	}
	for i, a := range AtomTypes {
		atomOrder[a] = i
	}
	withXGap := append(append([]byte(nil), Restypes...), 'X', '-')
	hhblitsToModel = make([]int, len(idToHHblitsAA))
	for i, aa := range idToHHblitsAA {
		for j, r := range withXGap {
			if r == aa {
				hhblitsToModel[i] = j
				break
			}
		}
	}
	standardAtomMask = make([][]float32, RestypeNum+1)
	for i := range standardAtomMask {
		standardAtomMask[i] = make([]float32, AtomTypeNum)
		if i == RestypeNum {
			continue
		}
		for _, a := range residueAtoms[OneToThree[Restypes[i]]] {
			standardAtomMask[i][atomOrder[a]] = 1
		}
	}
}

// Order returns the model index of a one-letter code, mapping anything
// unknown to UnknownID.
func Order(aa byte) int {
	if i, ok := restypeOrder[aa]; ok {
		return i
	}
	return UnknownID
}

// HHblitsID returns the HHblits index of an alignment character; unknown
// characters map to 'X'.
func HHblitsID(aa byte) int {
	if i, ok := HHblitsAAToID[aa]; ok {
		return i
	}
	return HHblitsAAToID['X']
}

// HHblitsToModel remaps an HHblits index to the model order (restypes + X + gap).
func HHblitsToModel(id int) int {
	if id < 0 || id >= len(hhblitsToModel) {
		return GapID
	}
	return hhblitsToModel[id]
}

// StandardAtomMask returns the atom37 presence mask of a model restype index.
func StandardAtomMask(restype int) []float32 {
	if restype < 0 || restype > RestypeNum {
		restype = RestypeNum
	}
	return standardAtomMask[restype]
}

// ThreeLetter returns the PDB name of a model restype index ("UNK" if unknown).
func ThreeLetter(restype int) string {
	if restype < 0 || restype >= RestypeNum {
		return "UNK"
	}
	return OneToThree[Restypes[restype]]
}

// OneHot encodes seq with the given mapping into a len(seq) x depth matrix.
func OneHot(seq string, mapping func(byte) int, depth int) []float32 {
	out := make([]float32, len(seq)*depth)
	for i := 0; i < len(seq); i++ {
		out[i*depth+mapping(seq[i])] = 1
	}
	return out
}

// ChainIDs are the PDB chain labels in assignment order.
const ChainIDs = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
