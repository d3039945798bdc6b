package patch

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildArtifact assembles a raw patch artifact byte stream.
func buildArtifact(t *testing.T, magic string, version uint32, recs []Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(magic)
	_ = binary.Write(&buf, binary.LittleEndian, version)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(recs)))
	for _, r := range recs {
		_ = binary.Write(&buf, binary.LittleEndian, r.Offset)
		_ = binary.Write(&buf, binary.LittleEndian, uint32(len(r.Data)))
		buf.Write(r.Data)
	}
	return buf.Bytes()
}

func TestDecodeRoundTrip(t *testing.T) {
	in := &Set{Records: []Record{
		{Offset: 10, Data: []byte{1, 2, 3}},
		{Offset: 0, Data: []byte{0xff}},
		{Offset: 999, Data: nil},
	}}
	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out.Records))
	}
	for i, rec := range out.Records {
		if rec.Offset != in.Records[i].Offset {
			t.Fatalf("record %d offset: got %d want %d", i, rec.Offset, in.Records[i].Offset)
		}
		if !bytes.Equal(rec.Data, in.Records[i].Data) {
			t.Fatalf("record %d data mismatch", i)
		}
	}
	if out.TotalBytes() != 4 {
		t.Fatalf("expected 4 payload bytes, got %d", out.TotalBytes())
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	raw := buildArtifact(t, "NOPE", 1, []Record{{Offset: 0, Data: []byte{1}}})
	if _, err := Decode(bytes.NewReader(raw)); err == nil || !IsFormat(err) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	raw := buildArtifact(t, "LORA", 2, nil)
	if _, err := Decode(bytes.NewReader(raw)); err == nil || !IsFormat(err) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestDecodeRejectsTruncation(t *testing.T) {
	raw := buildArtifact(t, "LORA", 1, []Record{{Offset: 5, Data: []byte{1, 2, 3, 4}}})
	// Chop the stream at every possible point; all must fail with FormatError.
	for cut := 0; cut < len(raw); cut++ {
		if _, err := Decode(bytes.NewReader(raw[:cut])); err == nil || !IsFormat(err) {
			t.Fatalf("cut=%d: expected format error, got %v", cut, err)
		}
	}
	if _, err := Decode(bytes.NewReader(raw)); err != nil {
		t.Fatalf("full stream should decode: %v", err)
	}
}

func TestDecodeEmptySet(t *testing.T) {
	raw := buildArtifact(t, "LORA", 1, nil)
	s, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(s.Records) != 0 || s.TotalBytes() != 0 {
		t.Fatalf("expected empty set, got %+v", s)
	}
}
