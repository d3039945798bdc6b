//go:build onnx

package engine

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// onnxBuilt indicates this binary was compiled with the real ONNX Runtime
// binding. See session_stub.go for the default build.
const onnxBuilt = true

var ortInitOnce sync.Once
var ortInitErr error

func initRuntime() error {
	ortInitOnce.Do(func() {
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

type onnxSessionFactory struct{}

func newDefaultSessionFactory() SessionFactory { return onnxSessionFactory{} }

// New builds a session from the in-memory model bytes. No temp file is
// written; the runtime parses the buffer directly.
func (onnxSessionFactory) New(modelBytes []byte) (Session, error) {
	if err := initRuntime(); err != nil {
		return nil, ErrRuntimeUnavailable("onnxruntime init: " + err.Error())
	}
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer opts.Destroy()
	sess, err := ort.NewDynamicAdvancedSessionWithONNXData(
		modelBytes,
		[]string{"input_ids", "attention_mask"},
		[]string{"last_hidden_state"},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx session: %w", err)
	}
	return &onnxSession{sess: sess}, nil
}

type onnxSession struct {
	sess   *ort.DynamicAdvancedSession
	hidden int
}

func (s *onnxSession) Run(ids, mask []int64) ([]float32, error) {
	n := int64(len(ids))
	idsT, err := ort.NewTensor(ort.NewShape(1, n), ids)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer idsT.Destroy()
	maskT, err := ort.NewTensor(ort.NewShape(1, n), mask)
	if err != nil {
		return nil, fmt.Errorf("mask tensor: %w", err)
	}
	defer maskT.Destroy()

	outputs := []ort.Value{nil}
	if err := s.sess.Run([]ort.Value{idsT, maskT}, outputs); err != nil {
		return nil, fmt.Errorf("encoder run: %w", err)
	}
	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("encoder output: unexpected tensor type %T", outputs[0])
	}
	defer out.Destroy()

	shape := out.GetShape()
	if len(shape) < 2 {
		return nil, fmt.Errorf("encoder output: unexpected shape %v", shape)
	}
	s.hidden = int(shape[len(shape)-1])
	data := out.GetData()
	cp := make([]float32, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *onnxSession) HiddenSize() int { return s.hidden }

func (s *onnxSession) Close() error {
	if s.sess != nil {
		err := s.sess.Destroy()
		s.sess = nil
		return err
	}
	return nil
}
