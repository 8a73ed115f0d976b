package ports

import "math/rand"

// Read is one substring sampled from a reference sequence.
type Read struct {
	Ref     string // reference sequence name
	Offset  int    // 0-based start on the forward strand
	Forward bool   // false when the window was reverse-complemented
	Seq     string // ACGT, uppercase
}

// SequenceSource samples substrings from a set of named reference
// sequences, weighting the choice of sequence by its length so every
// reference position is equally likely to seed a read.
//
// Sample draws a window of exactly the requested length. Windows
// containing ambiguous bases are redrawn internally; callers only ever
// see ACGT. The rng is supplied by the caller so a fixed seed reproduces
// a run.
type SequenceSource interface {
	// Sample returns one read of the given length.
	// Fails when no reference can fit a window of that length.
	Sample(rng *rand.Rand, length int) (Read, error)

	// Count returns the number of loaded reference sequences.
	Count() int

	// TotalBases returns the summed length of all loaded sequences.
	TotalBases() int64
}
