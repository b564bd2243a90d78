package store

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// layoutVersion is bumped whenever a record's field list changes.
const layoutVersion byte = 1

// record layout: kind byte, layout version byte, CBOR array of fields
const headerSize = 2

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// ErrCorruptRecord is returned when stored bytes do not match the expected layout.
type ErrCorruptRecord struct {
	Kind   RecordKind
	Reason string
}

func (e *ErrCorruptRecord) Error() string {
	return fmt.Sprintf("store: corrupt %s record: %s", e.Kind, e.Reason)
}

func encode(kind RecordKind, v interface{}) ([]byte, error) {
	body, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("store: encode %s: %w", kind, err)
	}
	out := make([]byte, 0, headerSize+len(body))
	out = append(out, byte(kind), layoutVersion)
	return append(out, body...), nil
}

func decode(kind RecordKind, data []byte, v interface{}) error {
	if len(data) < headerSize {
		return &ErrCorruptRecord{Kind: kind, Reason: "short record"}
	}
	if RecordKind(data[0]) != kind {
		return &ErrCorruptRecord{Kind: kind, Reason: fmt.Sprintf("found %s", RecordKind(data[0]))}
	}
	if data[1] != layoutVersion {
		return &ErrCorruptRecord{Kind: kind, Reason: fmt.Sprintf("unsupported layout version %d", data[1])}
	}
	if err := cbor.Unmarshal(data[headerSize:], v); err != nil {
		return &ErrCorruptRecord{Kind: kind, Reason: err.Error()}
	}
	return nil
}

// document renders v for backends that keep a readable mirror.
func document(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
