package engine

import (
	"context"
	"fmt"
	"io"

	"adapterd/internal/patch"
)

// Initialize loads the base model bytes into memory and transitions the
// engine to Ready with no adapter loaded. It is part of the construction
// protocol: call it once before ApplyAdapter/RemoveAdapter/Classify. A
// second call on a live engine is a no-op. A failure here is terminal for
// the instance.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer != nil {
		return nil
	}
	if e.provider == nil {
		e.setError("no base model provider configured")
		return fatalError{msg: "no base model provider configured"}
	}
	if !e.provider.Cached() {
		e.setDownloading(0, "fetching base model")
	}
	rc, size, err := e.provider.Open(ctx, e.setDownloading)
	if err != nil {
		e.setError("base model: " + err.Error())
		return fatalError{msg: "base model: " + err.Error()}
	}
	defer rc.Close()

	buf, err := readAllSized(rc, size)
	if err != nil {
		e.setError("base model read: " + err.Error())
		return fatalError{msg: "base model read: " + err.Error()}
	}
	if len(buf) == 0 {
		e.setError("base model is empty")
		return fatalError{msg: "base model is empty"}
	}

	e.buffer = patch.NewWeightBuffer(buf)
	e.setBaseBytes(int64(len(buf)))
	e.setReadyLocked()
	e.log.Info().Int("bytes", len(buf)).Msg("base model resident")
	e.publish("initialized", "", map[string]any{"bytes": len(buf)})
	return nil
}

// readAllSized reads exactly size bytes when the size is known up front,
// avoiding ReadAll's grow-and-copy on multi-hundred-megabyte models.
func readAllSized(r io.Reader, size int64) ([]byte, error) {
	if size <= 0 {
		return io.ReadAll(r)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("expected %d bytes: %w", size, err)
	}
	return buf, nil
}
