//go:build !onnx

package engine

// onnxBuilt indicates this binary was compiled without the ONNX Runtime
// binding. The stub factory preserves compile-time structure and yields
// deterministic "runtime unavailable" errors in binaries built without CGO.
const onnxBuilt = false

type stubSessionFactory struct{}

func newDefaultSessionFactory() SessionFactory { return stubSessionFactory{} }

func (stubSessionFactory) New(modelBytes []byte) (Session, error) {
	return nil, ErrRuntimeUnavailable("inference runtime not built in (rebuild with -tags=onnx)")
}
