package engine

import (
	"context"
	"fmt"
	"io"

	"adapterd/internal/patch"
)

// ApplyRequest carries one adapter's identity and its four artifact streams.
type ApplyRequest struct {
	ID      string
	Version string

	Patch     io.Reader
	Heads     io.Reader
	Tokenizer io.Reader
	Config    io.Reader
}

// ApplyAdapter swaps the engine onto the requested adapter: revert any live
// patch, apply the new one, rebuild the inference session over the patched
// bytes, and commit the adapter's heads and tokenizer. On any failure after
// the patch was written, the buffer is rolled back and the engine lands in
// Ready with no adapter loaded; the pristine base bytes are never lost.
//
// Re-applying the committed (id, version) is a no-op and succeeds without
// reading the artifact streams.
func (e *Engine) ApplyAdapter(ctx context.Context, req ApplyRequest) error {
	if req.ID == "" {
		return errArtifact("adapter id is required")
	}
	if req.Version == "" {
		return errArtifact("adapter version is required")
	}
	if e.loadedMatches(req.ID, req.Version) {
		return nil
	}

	la, set, err := parseArtifacts(req)
	if err != nil {
		metricApplies.WithLabelValues("invalid").Inc()
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return notInitializedError{}
	}
	// Another apply may have won the race between the fast path and here.
	if e.adapter != nil && e.adapter.ID == req.ID && e.adapter.Version == req.Version {
		return nil
	}

	e.setPatching("applying adapter " + req.ID)
	e.publish("apply_start", req.ID, nil)

	// Pristine first. Patches are never stacked: the live patch (if any) is
	// reverted before the new one touches the buffer.
	if err := e.revertLocked(); err != nil {
		metricApplies.WithLabelValues("error").Inc()
		e.setError("revert failed: " + err.Error())
		return err
	}

	rev, err := e.buffer.Apply(set)
	if err != nil {
		// Bounds are validated before any byte is written, so the buffer is
		// still pristine here.
		metricApplies.WithLabelValues("invalid").Inc()
		e.setReadyLocked()
		return err
	}
	metricPatchBytes.Add(float64(set.TotalBytes()))

	sess, err := e.sessions.New(e.buffer.Bytes())
	if err != nil {
		metricApplies.WithLabelValues("error").Inc()
		e.rollbackLocked(rev, req.ID)
		if IsRuntimeUnavailable(err) {
			return err
		}
		return fmt.Errorf("inference session: %w", err)
	}
	if hs := sess.HiddenSize(); hs > 0 && hs != la.Heads.HiddenSize() {
		sess.Close()
		metricApplies.WithLabelValues("invalid").Inc()
		e.rollbackLocked(rev, req.ID)
		return errArtifact("heads hidden size %d does not match encoder %d", la.Heads.HiddenSize(), hs)
	}

	e.revert = rev
	e.adapter = la
	e.session = sess
	e.bumpApplies()
	e.setReadyLocked()
	e.log.Info().
		Str("adapter", req.ID).
		Str("version", req.Version).
		Int("patch_records", len(set.Records)).
		Msg("adapter applied")
	e.publish("adapter_applied", req.ID, map[string]any{"version": req.Version})
	return nil
}

// RemoveAdapter reverts the live patch and returns the engine to Ready with
// no adapter loaded. Removing when nothing is loaded is a no-op.
func (e *Engine) RemoveAdapter(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return notInitializedError{}
	}
	if e.adapter == nil && e.revert == nil {
		return nil
	}
	id := ""
	if e.adapter != nil {
		id = e.adapter.ID
	}
	if err := e.revertLocked(); err != nil {
		e.setError("revert failed: " + err.Error())
		return err
	}
	e.setReadyLocked()
	e.log.Info().Str("adapter", id).Msg("adapter removed")
	e.publish("adapter_removed", id, nil)
	return nil
}

// revertLocked restores the pristine buffer and drops the session and
// adapter. Caller holds e.mu.
func (e *Engine) revertLocked() error {
	if e.session != nil {
		e.session.Close()
		e.session = nil
	}
	e.adapter = nil
	if e.revert == nil {
		return nil
	}
	if err := e.buffer.Revert(e.revert); err != nil {
		return err
	}
	e.revert = nil
	e.bumpReverts()
	return nil
}

// rollbackLocked undoes a just-applied patch set after a later step failed,
// leaving the engine Ready with no adapter loaded. Caller holds e.mu.
func (e *Engine) rollbackLocked(rev *patch.Set, adapterID string) {
	if err := e.buffer.Revert(rev); err != nil {
		// The capture came from this very buffer, so a failure here means
		// the resident bytes can no longer be trusted.
		e.setError("rollback failed: " + err.Error())
		return
	}
	e.bumpReverts()
	e.setReadyLocked()
	e.publish("apply_rolled_back", adapterID, nil)
}
