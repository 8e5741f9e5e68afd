// core/protein/pdb.go
package protein

import (
	"fmt"
	"strings"

	"foldrun-core/residue"
)

const pdbLineWidth = 80

// ToPDB renders p as a single-model PDB file.
func ToPDB(p *Protein) (string, error) {
	n := p.Len()
	if n == 0 {
		return "", fmt.Errorf("%w: no residues", ErrInvalid)
	}
	for i, a := range p.Aatype {
		if a < 0 || a > residue.RestypeNum {
			return "", fmt.Errorf("%w: residue %d has type %d", ErrInvalid, i, a)
		}
		if c := p.ChainIndex[i]; c < 0 || c >= len(residue.ChainIDs) {
			return "", fmt.Errorf("%w: chain index %d", ErrInvalid, c)
		}
	}

	var lines []string
	lines = append(lines, "MODEL     1")
	atom := 1
	for i := 0; i < n; i++ {
		if i > 0 && p.ChainIndex[i] != p.ChainIndex[i-1] {
			lines = append(lines, ter(atom, p, i-1))
			atom++
		}
		res := residue.ThreeLetter(p.Aatype[i])
		chain := residue.ChainIDs[p.ChainIndex[i]]
		for a, name := range residue.AtomTypes {
			k := i*residue.AtomTypeNum + a
			if p.AtomMask.Data[k] < 0.5 {
				continue
			}
			elem := name[:1]
			if len(name) != 4 {
				name = " " + name
			}
			pos := p.Positions.Data[k*3 : k*3+3]
			lines = append(lines, fmt.Sprintf("%-6s%5d %-4s%1s%3s %1c%4d%1s   %8.3f%8.3f%8.3f%6.2f%6.2f          %2s%2s",
				"ATOM", atom, name, "", res, chain, p.ResidueIndex[i], "",
				pos[0], pos[1], pos[2], 1.0, p.BFactors.Data[k], elem, ""))
			atom++
		}
	}
	lines = append(lines, ter(atom, p, n-1), "ENDMDL", "END")

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		if pad := pdbLineWidth - len(l); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func ter(atom int, p *Protein, i int) string {
	return fmt.Sprintf("%-6s%5d      %3s %1c%4d", "TER", atom,
		residue.ThreeLetter(p.Aatype[i]), residue.ChainIDs[p.ChainIndex[i]], p.ResidueIndex[i])
}
