// Package engine keeps one base language-understanding model resident in
// memory and specializes it per caller by applying and reverting binary
// weight patches in place, then classifying utterances (intent + BIO slots)
// through adapter-supplied heads. It is structured into small files by
// concern:
//
//   - engine.go: core Engine type and constructors.
//   - config.go: Config and defaults; NewWithConfig applies defaults.
//   - types.go: lifecycle State, LoadedAdapter, Snapshot.
//   - errors.go: error types and helpers (IsAdapterMismatch, IsInvalidAdapter, ...).
//   - initialize.go: base model load and the construction protocol.
//   - apply.go: ApplyAdapter/RemoveAdapter and the patch swap protocol.
//   - artifacts.go: adapter artifact parsing and cross-validation.
//   - classify.go: Classify entry point.
//   - session.go: Session/SessionFactory interfaces over the encoder runtime.
//   - status.go: Status/Snapshot/CurrentAdapter projections and counters.
//   - events.go / eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: Prometheus collectors.
//
// Build tags and runtimes:
//
//   - ONNX Runtime encoder (standard): enabled with `-tags=onnx` via
//     session_onnx.go, building sessions directly from the in-memory patched
//     bytes. A no-CGO stub exists when the tag is not set: session_stub.go.
//
// All four public operations (Initialize, ApplyAdapter, RemoveAdapter,
// Classify) serialize on one exclusivity lock for their full duration: an
// adapter swap and a classification can never interleave, so a classify call
// always sees a fully-applied, self-consistent adapter/buffer pairing.
// Status and CurrentAdapter are guarded separately and stay observable while
// an operation is in flight.
package engine
