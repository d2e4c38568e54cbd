package frame

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkReader yields at most one byte per Read to exercise coalescing.
type chunkReader struct {
	data []byte
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	p[0] = c.data[0]
	c.data = c.data[1:]
	return 1, nil
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"LOGIN|alice|pw",
		"ASLIST|a,b,c|3",
		"unicode éè€ payload",
		strings.Repeat("x", MaxPayloadBytes),
	}
	for _, in := range cases {
		buf, err := Encode(in)
		if err != nil {
			t.Fatalf("encode %q: %v", in, err)
		}
		out, err := Decode(bytes.NewReader(buf))
		if err != nil {
			t.Fatalf("decode %q: %v", in, err)
		}
		if out != in {
			t.Fatalf("round trip mismatch: in=%d bytes out=%d bytes", len(in), len(out))
		}
	}
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	_, err := Encode(strings.Repeat("x", MaxPayloadBytes+1))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestEncodeOversizedMultibyte(t *testing.T) {
	// 32768 three-byte runes encode to 98304 bytes.
	_, err := Encode(strings.Repeat("€", 32768))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestDecodeCoalescesChunkedReads(t *testing.T) {
	buf, err := Encode("START|assetlink")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := Decode(&chunkReader{data: buf})
	if err != nil {
		t.Fatalf("decode chunked: %v", err)
	}
	if out != "START|assetlink" {
		t.Fatalf("chunked decode mismatch: %q", out)
	}
}

func TestDecodeTruncatedHeader(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{0x00}))
	if !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed, got %v", err)
	}
	_, err = Decode(bytes.NewReader(nil))
	if !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed on empty stream, got %v", err)
	}
}

func TestDecodeTruncatedPayload(t *testing.T) {
	buf, err := Encode("ACCPT|hello")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = Decode(bytes.NewReader(buf[:len(buf)-3]))
	if !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed, got %v", err)
	}
}

func TestWriteEmitsCompleteFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "LGOUT|"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() != HeaderLen+len("LGOUT|") {
		t.Fatalf("unexpected frame length: %d", buf.Len())
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != "LGOUT|" {
		t.Fatalf("payload mismatch: %q", out)
	}
}

func TestWriteOversizedWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, strings.Repeat("x", MaxPayloadBytes+1))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("oversized write leaked %d bytes", buf.Len())
	}
}
