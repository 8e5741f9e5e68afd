// Package msa encodes and decodes multiple sequence alignments for
// multi-chain queries.
//
// Alignments are A3M text blocks, one per unique chain sequence. Unpaired
// blocks hold hits found for a chain alone; paired blocks hold rows where
// the same row index is the same source organism across all chains. A job's
// alignments are stored as one serialized blob whose first line is
//
//	#<len1,len2,...>\t<card1,card2,...>
//
// followed by the paired rows and the gap-padded unpaired rows. Rows are
// split back into chains by reference length, never by gap characters.
package msa

import "errors"

var (
	// ErrInvalidPairing is returned when neither paired nor unpaired blocks are given.
	ErrInvalidPairing = errors.New("invalid pairing: no paired or unpaired alignment")
	// ErrPairedRowMismatch is returned when paired blocks disagree on row count.
	ErrPairedRowMismatch = errors.New("paired alignments have different row counts")
	// ErrUnknownFormat is returned for blobs that cannot be an alignment.
	ErrUnknownFormat = errors.New("unknown a3m format")
	// ErrMalformedHeader is returned when the length/cardinality header does not parse.
	ErrMalformedHeader = errors.New("malformed a3m header")
)
