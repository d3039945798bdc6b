package engine

import (
	"errors"
	"fmt"

	"adapterd/internal/patch"
)

// artifactError signals a malformed heads/tokenizer/config artifact or a
// cross-artifact inconsistency. Patch format and bounds problems carry their
// own types in internal/patch.
type artifactError struct{ msg string }

func (e artifactError) Error() string { return "adapter artifact: " + e.msg }

func errArtifact(format string, args ...any) error {
	return artifactError{msg: fmt.Sprintf(format, args...)}
}

// IsArtifact reports whether err is an adapter artifact parse/validation error.
func IsArtifact(err error) bool {
	var ae artifactError
	return errors.As(err, &ae)
}

// IsInvalidAdapter reports whether err means the adapter bundle itself is bad
// (artifact, patch format, or patch bounds) so the HTTP layer can return 422.
func IsInvalidAdapter(err error) bool {
	return IsArtifact(err) || patch.IsFormat(err) || patch.IsBounds(err)
}

// adapterMismatchError signals a classify against an adapter id that is not
// currently loaded. A caller-usage error, never retried internally.
type adapterMismatchError struct {
	requested string
	loaded    string
}

func (e adapterMismatchError) Error() string {
	if e.loaded == "" {
		return "adapter mismatch: requested " + e.requested + ", none loaded"
	}
	return "adapter mismatch: requested " + e.requested + ", loaded " + e.loaded
}

// IsAdapterMismatch reports whether err indicates the requested adapter is
// not the loaded one.
func IsAdapterMismatch(err error) bool {
	var me adapterMismatchError
	return errors.As(err, &me)
}

// notInitializedError signals an operation before Initialize succeeded.
type notInitializedError struct{}

func (notInitializedError) Error() string { return "engine not initialized" }

// IsNotInitialized reports whether err indicates a missing Initialize.
func IsNotInitialized(err error) bool {
	var ne notInitializedError
	return errors.As(err, &ne)
}

// fatalError marks a base-model load failure. Terminal for this engine
// instance; recovery requires constructing a fresh engine.
type fatalError struct{ msg string }

func (e fatalError) Error() string { return "engine fatal: " + e.msg }

// IsFatal reports whether err is terminal for the engine instance.
func IsFatal(err error) bool {
	var fe fatalError
	return errors.As(err, &fe)
}

// runtimeUnavailableError signals a missing inference runtime (e.g. built
// without the onnx tag) so the HTTP layer can return 503 instead of 500.
type runtimeUnavailableError struct{ msg string }

func (e runtimeUnavailableError) Error() string { return e.msg }

// ErrRuntimeUnavailable constructs a runtimeUnavailableError.
func ErrRuntimeUnavailable(msg string) error { return runtimeUnavailableError{msg: msg} }

// IsRuntimeUnavailable reports whether err indicates a missing/failed
// inference runtime.
func IsRuntimeUnavailable(err error) bool {
	var re runtimeUnavailableError
	return errors.As(err, &re)
}
