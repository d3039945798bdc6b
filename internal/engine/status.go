package engine

import (
	"time"

	"adapterd/pkg/types"
)

// Snapshot returns the current observable engine state. Safe to call while
// an apply or classify holds the exclusivity lock.
func (e *Engine) Snapshot() Snapshot {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return Snapshot{
		State:    e.state,
		Progress: e.progress,
		Message:  e.message,
		Err:      e.errMsg,
		Adapter:  e.info,
	}
}

// Status builds the full wire-level status response.
func (e *Engine) Status() types.StatusResponse {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return types.StatusResponse{
		State:                string(e.state),
		Progress:             e.progress,
		Message:              e.message,
		Error:                e.errMsg,
		BaseModelBytes:       e.baseBytes,
		Adapter:              e.info,
		UptimeSeconds:        int64(time.Since(e.startTime).Seconds()),
		ServerTimeUnix:       time.Now().Unix(),
		AppliesTotal:         e.applies,
		RevertsTotal:         e.reverts,
		ClassificationsTotal: e.classifications,
	}
}

// CurrentAdapter returns the loaded adapter projection, if any.
func (e *Engine) CurrentAdapter() (types.AdapterInfo, bool) {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	if e.info == nil {
		return types.AdapterInfo{}, false
	}
	return *e.info, true
}

// Ready reports whether the engine can accept adapter and classify calls.
func (e *Engine) Ready() bool {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.state == StateReady
}

// RuntimeBuilt reports whether the real inference runtime was compiled in.
func (e *Engine) RuntimeBuilt() bool { return onnxBuilt }

// loadedMatches is the lock-free idempotency probe used by ApplyAdapter's
// fast path. The authoritative check repeats under the exclusivity lock.
func (e *Engine) loadedMatches(id, version string) bool {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.info != nil && e.info.ID == id && e.info.Version == version
}

func (e *Engine) setDownloading(fraction float64, message string) {
	e.statusMu.Lock()
	e.state = StateDownloading
	e.progress = fraction
	e.message = message
	e.statusMu.Unlock()
}

func (e *Engine) setPatching(message string) {
	e.statusMu.Lock()
	e.state = StatePatching
	e.progress = 0
	e.message = message
	e.statusMu.Unlock()
}

// setReadyLocked projects the current adapter (caller holds e.mu) into the
// observable state and flips to Ready.
func (e *Engine) setReadyLocked() {
	var info *types.AdapterInfo
	if e.adapter != nil {
		ai := e.adapter.info()
		info = &ai
	}
	e.statusMu.Lock()
	e.state = StateReady
	e.progress = 0
	e.message = ""
	e.errMsg = ""
	e.info = info
	e.statusMu.Unlock()
}

func (e *Engine) setError(msg string) {
	e.statusMu.Lock()
	e.state = StateError
	e.errMsg = msg
	e.info = nil
	e.statusMu.Unlock()
}

func (e *Engine) setBaseBytes(n int64) {
	e.statusMu.Lock()
	e.baseBytes = n
	e.statusMu.Unlock()
}

func (e *Engine) bumpApplies() {
	e.statusMu.Lock()
	e.applies++
	e.statusMu.Unlock()
	metricApplies.WithLabelValues("ok").Inc()
}

func (e *Engine) bumpReverts() {
	e.statusMu.Lock()
	e.reverts++
	e.statusMu.Unlock()
	metricReverts.Inc()
}

func (e *Engine) bumpClassifications() {
	e.statusMu.Lock()
	e.classifications++
	e.statusMu.Unlock()
	metricClassifications.Inc()
}
