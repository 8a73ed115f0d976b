package ports

// Oracle reports the exact optimal global-alignment penalty between a
// mutated sequence and the original it was derived from. Used only to
// verify that an applied edit combination achieved its intended penalty;
// must be deterministic for identical inputs and free of side effects.
type Oracle interface {
	// Penalty returns the minimal total edit cost (non-negative) of a
	// global alignment of mutated against original.
	Penalty(mutated, original string) int
}
