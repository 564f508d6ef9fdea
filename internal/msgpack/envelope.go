// Package msgpack frames MessagePack payloads as compact versioned
// envelopes: one version byte followed by the zstd-compressed body.
package msgpack

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/hugr-lab/odata-go/internal/serialize"
)

var (
	// ErrShortEnvelope is returned for input without a body.
	ErrShortEnvelope = errors.New("envelope too short")

	// ErrVersion is returned when the version byte does not match.
	ErrVersion = errors.New("envelope version mismatch")
)

// Seal encodes v and wraps it in an envelope tagged with version.
func Seal(version byte, v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	packed, err := serialize.Compress(data)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(packed)+1)
	out = append(out, version)
	return append(out, packed...), nil
}

// Open unwraps an envelope produced by Seal into v, which must be a pointer.
func Open(version byte, data []byte, v any) error {
	if len(data) < 2 {
		return ErrShortEnvelope
	}
	if data[0] != version {
		return fmt.Errorf("%w: got %d, want %d", ErrVersion, data[0], version)
	}

	raw, err := serialize.Decompress(data[1:])
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	return nil
}
