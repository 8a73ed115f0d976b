package recovery

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mypersonaltherapeutics/qtip/internal/ports"
)

// surpriseFloor is the severity threshold: failures whose expected score
// is at or above it (near-perfect reads) are forwarded to the sink.
const surpriseFloor = -6

// maxRecordBytes bounds one output line; long reads carry the full
// sequence and quality strings.
const maxRecordBytes = 4 * 1024 * 1024

// Collector consumes the aligner's output stream concurrently with read
// submission and classifies each record. Records must arrive in
// submission order; the collector does not re-sort, it only tallies.
//
// Lifecycle: Start once, then Wait. The tallies are owned by the
// collector goroutine until Wait returns and must not be touched before
// then. A protocol violation stops collection and surfaces from Wait.
type Collector struct {
	sink  ports.SurpriseSink
	tally *Tally

	done chan struct{}
	err  error
}

// NewCollector creates a collector. sink may be nil.
func NewCollector(sink ports.SurpriseSink) *Collector {
	return &Collector{
		sink:  sink,
		tally: NewTally(),
		done:  make(chan struct{}),
	}
}

// Start begins draining r in its own goroutine.
func (c *Collector) Start(r io.Reader) {
	go func() {
		defer close(c.done)
		c.err = c.collect(r)
	}()
}

// Wait blocks until the stream is drained (EOF) or collection stopped
// on an error, and returns that error.
func (c *Collector) Wait() error {
	<-c.done
	return c.err
}

// Tally returns the accumulated counts. Call only after Wait.
func (c *Collector) Tally() *Tally {
	return c.tally
}

func (c *Collector) collect(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
	for sc.Scan() {
		line := sc.Text()
		if len(line) == 0 || line[0] == '@' {
			continue
		}
		rec, err := parseRecord(line)
		if err != nil {
			return err
		}
		if rec.Aligned() && !rec.HasScore {
			return fmt.Errorf("aligned record %q carries no %s tag", rec.Name, scoreTag)
		}
		c.observe(rec)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading aligner output: %w", err)
	}
	return nil
}

// observe classifies one record: recovered iff the read aligned and the
// reported score is at least the expected one.
func (c *Collector) observe(rec Record) {
	recovered := rec.Aligned() && rec.Score >= rec.Expected
	c.tally.Add(rec.Expected, len(rec.Seq), recovered)

	if c.sink != nil && !recovered && rec.Expected >= surpriseFloor {
		c.sink(ports.Surprise{
			Expected:    rec.Expected,
			Reported:    rec.Score,
			HasReported: rec.HasScore,
			Record:      rec.Raw,
		})
	}
}
