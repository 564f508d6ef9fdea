package serialize

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestCompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("api/Companies?$filter=id%20eq%204&"), 32)
	packed, err := Compress(data)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if len(packed) >= len(data) {
		t.Errorf("compressed size %d not smaller than %d", len(packed), len(data))
	}

	unpacked, err := Decompress(packed)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if !bytes.Equal(unpacked, data) {
		t.Error("round trip mismatch")
	}
}

func TestCompressEmpty(t *testing.T) {
	out, err := Compress(nil)
	if err != nil || len(out) != 0 {
		t.Errorf("Compress(nil) = %v, %v", out, err)
	}
}

func TestDecompressGarbage(t *testing.T) {
	if _, err := Decompress([]byte("not zstd")); err == nil {
		t.Error("expected error for invalid data")
	}
}

func TestDecode(t *testing.T) {
	body := []byte(`{"value":[{"id":1}]}`)

	zstdBody, err := Compress(body)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	if _, err := w.Write(body); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	tests := []struct {
		name     string
		encoding string
		input    []byte
		wantErr  bool
	}{
		{"identity", "", body, false},
		{"explicit identity", "identity", body, false},
		{"zstd", "zstd", zstdBody, false},
		{"gzip", "GZIP", gz.Bytes(), false},
		{"unknown", "br", body, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.encoding, bytes.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !bytes.Equal(got, body) {
				t.Errorf("Decode() = %q, want %q", got, body)
			}
		})
	}
}

func TestAcceptEncoding(t *testing.T) {
	for _, enc := range []string{EncodingZstd, EncodingGzip} {
		if !strings.Contains(AcceptEncoding, enc) {
			t.Errorf("AcceptEncoding %q missing %q", AcceptEncoding, enc)
		}
	}
}
