package recovery

import (
	"fmt"
	"strconv"
	"strings"
)

// unalignedFlag is the output-record flag bit marking an unaligned read.
const unalignedFlag = 4

// scoreTag prefixes the optional field carrying the reported score.
const scoreTag = "AS:i:"

// Record is one parsed aligner output line.
type Record struct {
	Name     string
	Flags    int
	Seq      string
	Score    int // reported score; meaningful only when HasScore
	HasScore bool
	Expected int    // decoded from the identifier (≤ 0)
	Raw      string // the unparsed line
}

// Aligned reports whether the unaligned flag bit is clear.
func (r Record) Aligned() bool {
	return r.Flags&unalignedFlag == 0
}

// parseRecord splits one tab-delimited output line. The read identifier
// carries `<originalSequence>_<penalty>`; the expected score is the
// penalty's negation. Any malformed field is a protocol violation.
func parseRecord(line string) (Record, error) {
	f := strings.Split(line, "\t")
	if len(f) < 11 {
		return Record{}, fmt.Errorf("output record has %d fields, want at least 11: %q", len(f), line)
	}
	rec := Record{Name: f[0], Seq: f[9], Raw: line}

	flags, err := strconv.Atoi(f[1])
	if err != nil {
		return Record{}, fmt.Errorf("output record %q: flags: %w", f[0], err)
	}
	rec.Flags = flags

	us := strings.LastIndexByte(f[0], '_')
	if us < 0 {
		return Record{}, fmt.Errorf("read identifier %q: missing _<penalty> suffix", f[0])
	}
	penalty, err := strconv.Atoi(f[0][us+1:])
	if err != nil {
		return Record{}, fmt.Errorf("read identifier %q: penalty: %w", f[0], err)
	}
	rec.Expected = -penalty

	for _, tag := range f[11:] {
		if strings.HasPrefix(tag, scoreTag) {
			n, err := strconv.Atoi(tag[len(scoreTag):])
			if err != nil {
				return Record{}, fmt.Errorf("output record %q: score tag %q: %w", f[0], tag, err)
			}
			rec.Score, rec.HasScore = n, true
			break
		}
	}
	return rec, nil
}
