// core/features/features.go
//
// Package features turns a job's alignments and templates into the named
// arrays a structure-prediction model consumes.
package features

import (
	"errors"

	"foldrun-core/tensor"
)

type (
	Tensor  = tensor.Tensor
	Dict    = tensor.Dict
	Strings = tensor.Strings
)

// Feature names read outside this package.
const (
	Aatype       = "aatype"
	ResidueIndex = "residue_index"
	AsymID       = "asym_id"
	SeqLength    = "seq_length"
	Sequence     = "sequence"
	MSA          = "msa"
)

var (
	// ErrEmptyMSA is returned when a chain has no alignment rows.
	ErrEmptyMSA = errors.New("alignment must contain at least one sequence")
	// ErrRowLength is returned when alignment rows differ in length.
	ErrRowLength = errors.New("alignment rows differ in length")
	// ErrTooManyChains is returned past the last PDB chain label.
	ErrTooManyChains = errors.New("too many chains")
	// ErrMissingFeature is returned when a required feature is absent.
	ErrMissingFeature = errors.New("missing feature")
)

// ModelType names the model family.
type ModelType string

const (
	ModelAuto     ModelType = "auto"
	ModelPTM      ModelType = "AlphaFold2-ptm"
	ModelMultimer ModelType = "AlphaFold2-multimer"
)

// ResolveModelType picks the multimer model for complex runs when t is auto.
func ResolveModelType(isComplex bool, t ModelType) ModelType {
	if t != ModelAuto && t != "" {
		return t
	}
	if isComplex {
		return ModelMultimer
	}
	return ModelPTM
}

// Mode is how a job's features are assembled.
type Mode int

const (
	// ModeSingleChain builds plain monomer features.
	ModeSingleChain Mode = iota
	// ModePseudoMonomer concatenates a complex into one chain with
	// residue-index breaks, for monomer models.
	ModePseudoMonomer
	// ModeMultimer builds per-chain features and merges them.
	ModeMultimer
)

func (m Mode) String() string {
	switch m {
	case ModeSingleChain:
		return "single-chain"
	case ModePseudoMonomer:
		return "pseudo-monomer"
	case ModeMultimer:
		return "multimer"
	}
	return "unknown"
}

// SelectMode chooses the assembly mode for a job with numChains chains.
func SelectMode(numChains int, model ModelType) Mode {
	switch {
	case model == ModelMultimer:
		return ModeMultimer
	case numChains > 1:
		return ModePseudoMonomer
	default:
		return ModeSingleChain
	}
}
