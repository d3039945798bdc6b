package engine

// Session runs the patched encoder over one tokenized utterance and returns
// per-token hidden states as a flat [tokens * hidden] slice.
type Session interface {
	// Run feeds token ids and attention mask through the encoder.
	Run(ids, mask []int64) ([]float32, error)
	// HiddenSize reports the encoder hidden dimension, or 0 if unknown
	// before the first Run.
	HiddenSize() int
	Close() error
}

// SessionFactory builds a Session from the current (patched) model bytes.
// The engine calls it under the exclusivity lock after every successful
// patch apply; the byte slice is borrowed and must not be retained past New.
type SessionFactory interface {
	New(modelBytes []byte) (Session, error)
}
