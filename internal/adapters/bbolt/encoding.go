package bbolt

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"

	"github.com/mypersonaltherapeutics/qtip/internal/ports"
)

// encodeRecord serializes a run record to its stored form:
// snappy-compressed JSON. The tally rows dominate the payload and
// compress well; snappy keeps decoding cheap enough that ListRuns can
// afford to decode every record.
func encodeRecord(rec *ports.RunRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal run: %w", err)
	}
	return snappy.Encode(nil, data), nil
}

// decodeRecord reverses encodeRecord. The blob may live inside a bbolt
// transaction; both snappy and json copy whatever they keep, so the
// returned record stays valid after the transaction ends.
func decodeRecord(blob []byte) (*ports.RunRecord, error) {
	data, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, fmt.Errorf("decompress run: %w", err)
	}
	var rec ports.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &rec, nil
}
