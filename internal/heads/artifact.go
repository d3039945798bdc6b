package heads

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Heads artifact layout, little-endian:
//
//	[rows u32][cols u32][rows*cols f32]   intent weights
//	[rows u32][cols u32][rows*cols f32]   slot weights
//	[count u32][count f32]                intent bias
//	[count u32][count f32]                slot bias
//
// Bias counts must equal the matching weight row counts and both matrices
// must share the column (hidden) dimension.

// maxElems bounds a single matrix read; anything larger is a corrupt header,
// not a plausible classification head.
const maxElems = 1 << 26

// Parse reads a heads artifact in full, failing on truncation or any
// dimension inconsistency.
func Parse(r io.Reader) (*Heads, error) {
	br := bufio.NewReader(r)
	intentW, intentRows, intentCols, err := readMatrix(br, "intent weights")
	if err != nil {
		return nil, err
	}
	slotW, slotRows, slotCols, err := readMatrix(br, "slot weights")
	if err != nil {
		return nil, err
	}
	intentB, err := readVector(br, "intent bias")
	if err != nil {
		return nil, err
	}
	slotB, err := readVector(br, "slot bias")
	if err != nil {
		return nil, err
	}

	if intentCols != slotCols {
		return nil, fmt.Errorf("heads artifact: hidden size mismatch: intent=%d slot=%d", intentCols, slotCols)
	}
	if len(intentB) != intentRows {
		return nil, fmt.Errorf("heads artifact: intent bias count %d != rows %d", len(intentB), intentRows)
	}
	if len(slotB) != slotRows {
		return nil, fmt.Errorf("heads artifact: slot bias count %d != rows %d", len(slotB), slotRows)
	}
	return &Heads{
		Intent: Linear{Out: intentRows, In: intentCols, W: intentW, B: intentB},
		Slot:   Linear{Out: slotRows, In: slotCols, W: slotW, B: slotB},
	}, nil
}

func readMatrix(r io.Reader, what string) ([]float32, int, int, error) {
	rows, err := readU32(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("heads artifact: truncated %s header", what)
	}
	cols, err := readU32(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("heads artifact: truncated %s header", what)
	}
	if rows == 0 || cols == 0 || uint64(rows)*uint64(cols) > maxElems {
		return nil, 0, 0, fmt.Errorf("heads artifact: implausible %s shape %dx%d", what, rows, cols)
	}
	data, err := readF32s(r, int(rows)*int(cols))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("heads artifact: truncated %s data", what)
	}
	return data, int(rows), int(cols), nil
}

func readVector(r io.Reader, what string) ([]float32, error) {
	count, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("heads artifact: truncated %s header", what)
	}
	if count == 0 || count > maxElems {
		return nil, fmt.Errorf("heads artifact: implausible %s count %d", what, count)
	}
	data, err := readF32s(r, int(count))
	if err != nil {
		return nil, fmt.Errorf("heads artifact: truncated %s data", what)
	}
	return data, nil
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readF32s(r io.Reader, n int) ([]float32, error) {
	raw := make([]byte, 4*n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out, nil
}
