// Package bowtie runs a bowtie2-style aligner as a child process,
// streaming FASTA records in and SAM records out.
package bowtie

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// forcedArgs is appended after all user arguments. The collector depends
// on every one of them: --reorder keeps output in submission order,
// --sam-no-qname-trunc preserves the full read identifier, and -f -U -
// takes unpaired FASTA from stdin.
var forcedArgs = []string{"--reorder", "--sam-no-qname-trunc", "-f", "-U", "-"}

// Config selects the aligner executable and its pass-through arguments.
type Config struct {
	Exe  string // executable name or path
	Args string // extra arguments, split on whitespace (index, threads, ...)
}

// Process implements ports.AlignerProcess over an exec.Cmd.
type Process struct {
	args   []string // argv, args[0] = executable
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader
}

// New builds the aligner command line without starting it.
func New(cfg Config) (*Process, error) {
	if cfg.Exe == "" {
		return nil, errors.New("aligner executable not set")
	}
	args := append([]string{cfg.Exe}, strings.Fields(cfg.Args)...)
	args = append(args, forcedArgs...)
	return &Process{args: args}, nil
}

// Start launches the child with stdin and stdout piped. Stderr passes
// through to the parent so aligner diagnostics stay visible.
func (p *Process) Start(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, p.args[0], p.args[1:]...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("aligner stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("aligner stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", p.args[0], err)
	}

	p.cmd = cmd
	p.stdin = stdin
	p.stdout = stdout
	return nil
}

// Input returns the write end of the pipe. Closing it ends the run.
func (p *Process) Input() io.WriteCloser { return p.stdin }

// Output returns the aligner's SAM output stream.
func (p *Process) Output() io.Reader { return p.stdout }

// Wait reaps the child. Call only after Output has been drained.
func (p *Process) Wait() error {
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("aligner exited: %w", err)
	}
	return nil
}

// String returns the full command line.
func (p *Process) String() string {
	return strings.Join(p.args, " ")
}
