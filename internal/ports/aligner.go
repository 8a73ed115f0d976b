package ports

import (
	"context"
	"io"
)

// AlignerProcess is the external aligner, modeled as an ordered pipe:
// reads go in on Input, result records come out on Output in submission
// order. Order preservation is a configuration requirement on the
// concrete aligner (the bowtie adapter forces --reorder); nothing
// downstream re-sorts.
//
// Lifecycle: Start, then write Input and drain Output concurrently.
// Closing Input signals end-of-input; Output reaches EOF once the
// aligner finishes its buffered work. Wait must be called after Output
// is drained to reap the process and surface its exit status.
type AlignerProcess interface {
	// Start launches the aligner. The context bounds startup only, not
	// the subsequent streaming.
	Start(ctx context.Context) error

	// Input is the write end of the pipe. Closing it ends the run.
	Input() io.WriteCloser

	// Output is the read end of the pipe (SAM text).
	Output() io.Reader

	// Wait reaps the process after Output is drained.
	Wait() error

	// String returns the full command line, for logs and run records.
	String() string
}
