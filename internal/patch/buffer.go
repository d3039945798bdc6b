package patch

// WeightBuffer owns the base model's serialized bytes. It is loaded once and
// mutated only through Apply/Revert; its size never changes because records
// overwrite existing ranges, never insert or delete.
//
// The buffer holds no lock of its own. Single-writer discipline comes from
// the engine's exclusivity lock.
type WeightBuffer struct {
	buf []byte
}

// NewWeightBuffer takes ownership of b.
func NewWeightBuffer(b []byte) *WeightBuffer {
	return &WeightBuffer{buf: b}
}

// Len returns the buffer size in bytes.
func (w *WeightBuffer) Len() int { return len(w.buf) }

// Bytes returns the backing slice for building an inference session.
// Callers must hold the engine's lock and must not retain the slice across
// patch operations.
func (w *WeightBuffer) Bytes() []byte { return w.buf }

// checkBounds validates every record of s against the buffer before any
// mutation, so a bad set can never corrupt a prefix of the buffer.
func (w *WeightBuffer) checkBounds(s *Set) error {
	size := len(w.buf)
	for _, rec := range s.Records {
		end := rec.Offset + uint64(len(rec.Data))
		if end < rec.Offset || end > uint64(size) {
			return BoundsError{Offset: rec.Offset, Length: len(rec.Data), BufSize: size}
		}
	}
	return nil
}

// Apply overwrites the buffer with each record of s in order, returning a
// revert set with the same offsets and order. All pre-image bytes are
// captured before the first write: with overlapping records an interleaved
// capture would snapshot already-patched bytes, and replaying that would not
// restore the original buffer. Applying s then the returned set restores the
// buffer byte for byte.
func (w *WeightBuffer) Apply(s *Set) (*Set, error) {
	if err := w.checkBounds(s); err != nil {
		return nil, err
	}
	revert := &Set{Records: make([]Record, 0, len(s.Records))}
	for _, rec := range s.Records {
		orig := make([]byte, len(rec.Data))
		copy(orig, w.buf[rec.Offset:rec.Offset+uint64(len(rec.Data))])
		revert.Records = append(revert.Records, Record{Offset: rec.Offset, Data: orig})
	}
	for _, rec := range s.Records {
		copy(w.buf[rec.Offset:], rec.Data)
	}
	return revert, nil
}

// Revert overwrites the buffer with each record of s in order, without
// capturing a new revert set. It must be invoked exactly once per matching
// Apply; a second invocation against the same state is a programmer error.
func (w *WeightBuffer) Revert(s *Set) error {
	if err := w.checkBounds(s); err != nil {
		return err
	}
	for _, rec := range s.Records {
		copy(w.buf[rec.Offset:], rec.Data)
	}
	return nil
}
