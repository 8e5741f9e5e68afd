// internal/relax/relax.go
package relax

import (
	"context"
	"errors"
	"strings"

	"foldrun/internal/extcmd"
)

// Relaxer refines an unrelaxed PDB structure.
type Relaxer interface {
	Relax(ctx context.Context, pdb string) (string, error)
}

// Command relaxes by piping the PDB through an external program.
type Command struct {
	Argv []string
}

func (c Command) Relax(ctx context.Context, pdb string) (string, error) {
	out, err := extcmd.Run(ctx, c.Argv, []byte(pdb))
	if err != nil {
		return "", err
	}
	if !strings.Contains(string(out), "ATOM") {
		return "", errors.New("relax: command returned no atoms")
	}
	return string(out), nil
}
