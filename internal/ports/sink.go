package ports

// Surprise describes a near-perfect read the aligner failed to recover:
// the expected score was at or above the severity floor, yet the read
// either did not align or scored below expectation.
type Surprise struct {
	Expected    int    // expected score (≤ 0)
	Reported    int    // reported score; meaningful only when HasReported
	HasReported bool   // false when the read did not align
	Record      string // raw output record, for external logging
}

// SurpriseSink receives qualifying failures from the recovery collector.
// Invoked synchronously from the collector goroutine; implementations
// that block will stall collection.
type SurpriseSink func(Surprise)
