package patch

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Patch artifact header, little-endian throughout:
//
//	magic   4 bytes ASCII "LORA"
//	version u32 (must be 1)
//	count   u32
//	count times: offset u64, length u32, data[length]
const (
	magic         = "LORA"
	formatVersion = 1
)

// Record is one byte-range overwrite against the weight buffer.
type Record struct {
	Offset uint64
	Data   []byte
}

// Set is an ordered list of records decoded from one adapter artifact.
type Set struct {
	Records []Record
}

// TotalBytes returns the number of payload bytes across all records.
func (s *Set) TotalBytes() int {
	n := 0
	for _, r := range s.Records {
		n += len(r.Data)
	}
	return n
}

// Decode reads a complete patch artifact. It is fail-fast: no Set is returned
// unless every record was read successfully, so a corrupt stream can never be
// partially applied.
func Decode(r io.Reader) (*Set, error) {
	br := bufio.NewReader(r)

	var hdr [4]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, FormatError{Reason: "truncated header"}
	}
	if string(hdr[:]) != magic {
		return nil, FormatError{Reason: fmt.Sprintf("bad magic %q", hdr[:])}
	}
	ver, err := readU32(br)
	if err != nil {
		return nil, FormatError{Reason: "truncated header"}
	}
	if ver != formatVersion {
		return nil, FormatError{Reason: fmt.Sprintf("unsupported version %d", ver)}
	}
	count, err := readU32(br)
	if err != nil {
		return nil, FormatError{Reason: "truncated header"}
	}

	// Cap the initial allocation; a hostile count must not pre-allocate GBs.
	capHint := count
	if capHint > 1024 {
		capHint = 1024
	}
	records := make([]Record, 0, capHint)
	for i := uint32(0); i < count; i++ {
		off, err := readU64(br)
		if err != nil {
			return nil, FormatError{Reason: fmt.Sprintf("truncated record %d", i)}
		}
		length, err := readU32(br)
		if err != nil {
			return nil, FormatError{Reason: fmt.Sprintf("truncated record %d", i)}
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(br, data); err != nil {
			return nil, FormatError{Reason: fmt.Sprintf("truncated record %d: want %d data bytes", i, length)}
		}
		records = append(records, Record{Offset: off, Data: data})
	}
	return &Set{Records: records}, nil
}

// Encode writes a Set in the artifact format. Used by tooling and tests; the
// engine itself only decodes.
func Encode(w io.Writer, s *Set) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(magic); err != nil {
		return err
	}
	if err := writeU32(bw, formatVersion); err != nil {
		return err
	}
	if err := writeU32(bw, uint32(len(s.Records))); err != nil {
		return err
	}
	for _, rec := range s.Records {
		if err := writeU64(bw, rec.Offset); err != nil {
			return err
		}
		if err := writeU32(bw, uint32(len(rec.Data))); err != nil {
			return err
		}
		if _, err := bw.Write(rec.Data); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}
