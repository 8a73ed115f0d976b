package bowtie

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CommandLine(t *testing.T) {
	p, err := New(Config{Exe: "bowtie2", Args: "-x idx --local -p 4"})
	require.NoError(t, err)

	assert.Equal(t,
		"bowtie2 -x idx --local -p 4 --reorder --sam-no-qname-trunc -f -U -",
		p.String())
}

func TestNew_ForcedArgsAlwaysPresent(t *testing.T) {
	p, err := New(Config{Exe: "bowtie2"})
	require.NoError(t, err)

	assert.Equal(t, "bowtie2 --reorder --sam-no-qname-trunc -f -U -", p.String())
}

func TestNew_MissingExecutable(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorContains(t, err, "executable")
}

// cat ignores the forced flags' meaning but exercises the full pipe
// lifecycle: start, write, close, drain, reap.
func TestProcess_PipeLifecycle(t *testing.T) {
	p, err := New(Config{Exe: "cat"})
	require.NoError(t, err)
	// cat would treat the forced args as file names; bypass them.
	p.args = []string{"cat"}

	require.NoError(t, p.Start(context.Background()))

	_, err = io.WriteString(p.Input(), ">r1_6\nACGT\n")
	require.NoError(t, err)
	require.NoError(t, p.Input().Close())

	out, err := io.ReadAll(p.Output())
	require.NoError(t, err)
	assert.Equal(t, ">r1_6\nACGT\n", string(out))

	assert.NoError(t, p.Wait())
}

func TestProcess_StartFailure(t *testing.T) {
	p, err := New(Config{Exe: "/nonexistent/aligner-binary"})
	require.NoError(t, err)

	assert.Error(t, p.Start(context.Background()))
}
