// Package fasta loads reference sequences from FASTA files and samples
// fixed-length windows from them.
package fasta

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/mypersonaltherapeutics/qtip/internal/ports"
)

// maxWindowAttempts bounds the redraw loop for windows that land on
// ambiguous bases, so a mostly-N reference fails loudly instead of
// spinning.
const maxWindowAttempts = 1000

type sequence struct {
	name string
	seq  string
}

// Source implements ports.SequenceSource over an in-memory set of
// reference sequences.
type Source struct {
	seqs    []sequence
	cum     []int64 // cumulative base counts, aligned with seqs
	total   int64
	longest int
}

// Load reads every record from the given FASTA files. Headers are
// truncated at the first whitespace; sequence data is uppercased.
// maxBases > 0 caps the total number of bases loaded, truncating
// mid-record once the cap is reached and ignoring any remaining input.
func Load(paths []string, maxBases int64) (*Source, error) {
	ld := loader{max: maxBases}
	for _, path := range paths {
		if ld.full {
			break
		}
		if err := ld.file(path); err != nil {
			return nil, err
		}
	}
	if len(ld.seqs) == 0 {
		return nil, errors.New("no sequences in fasta input")
	}

	src := &Source{seqs: ld.seqs, cum: ld.cum, total: ld.loaded}
	for _, sq := range src.seqs {
		if len(sq.seq) > src.longest {
			src.longest = len(sq.seq)
		}
	}
	return src, nil
}

type loader struct {
	seqs    []sequence
	cum     []int64
	name    string
	pending strings.Builder
	loaded  int64
	max     int64
	full    bool
}

func (l *loader) file(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening fasta: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for !l.full {
		line, err := r.ReadString('\n')
		if lerr := l.line(path, strings.TrimRight(line, "\r\n")); lerr != nil {
			return lerr
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}
	l.flush()
	l.name = ""
	return nil
}

func (l *loader) line(path, s string) error {
	switch {
	case s == "":
	case s[0] == '>':
		l.flush()
		fields := strings.Fields(s[1:])
		if len(fields) == 0 {
			return fmt.Errorf("%s: fasta header has no name", path)
		}
		l.name = fields[0]
	case l.name == "":
		return fmt.Errorf("%s: sequence data before the first header", path)
	default:
		data := strings.ToUpper(s)
		if l.max > 0 && l.loaded+int64(len(data)) >= l.max {
			data = data[:l.max-l.loaded]
			l.full = true
		}
		l.pending.WriteString(data)
		l.loaded += int64(len(data))
	}
	return nil
}

func (l *loader) flush() {
	if l.pending.Len() == 0 {
		return
	}
	l.seqs = append(l.seqs, sequence{name: l.name, seq: l.pending.String()})
	l.cum = append(l.cum, l.loaded)
	l.pending.Reset()
}

// Sample draws one window of exactly the given length: a sequence
// chosen with probability proportional to its length, then a uniform
// start offset. Windows containing non-ACGT bytes are redrawn; half the
// returned reads are reverse-complemented.
func (s *Source) Sample(rng *rand.Rand, length int) (ports.Read, error) {
	if length < 1 || length > s.longest {
		return ports.Read{}, fmt.Errorf("no reference sequence fits a %d-base window", length)
	}
	for attempt := 0; attempt < maxWindowAttempts; attempt++ {
		sq := &s.seqs[s.pick(rng)]
		if len(sq.seq) < length {
			continue
		}
		off := rng.Intn(len(sq.seq) - length + 1)
		window := sq.seq[off : off+length]
		if !clean(window) {
			continue
		}
		read := ports.Read{Ref: sq.name, Offset: off, Forward: true, Seq: window}
		if rng.Float64() > 0.5 {
			read.Seq = ReverseComplement(window)
			read.Forward = false
		}
		return read, nil
	}
	return ports.Read{}, fmt.Errorf("no clean %d-base window found in %d attempts", length, maxWindowAttempts)
}

// pick returns the index of a sequence drawn with probability
// proportional to its length.
func (s *Source) pick(rng *rand.Rand) int {
	t := rng.Int63n(s.total)
	return sort.Search(len(s.cum), func(i int) bool { return s.cum[i] > t })
}

// Count returns the number of loaded sequences.
func (s *Source) Count() int { return len(s.seqs) }

// TotalBases returns the summed length of all loaded sequences.
func (s *Source) TotalBases() int64 { return s.total }

func clean(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}

// ReverseComplement returns the opposite-strand rendering of seq.
// Bases outside ACGT complement to N.
func ReverseComplement(seq string) string {
	b := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		b[len(seq)-1-i] = complement(seq[i])
	}
	return string(b)
}

func complement(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	default:
		return 'N'
	}
}
