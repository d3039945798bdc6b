package engine

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"adapterd/internal/basemodel"
	"adapterd/internal/patch"
)

// memProvider serves an in-memory base model and counts opens.
type memProvider struct {
	data  []byte
	opens int
	err   error
}

func (p *memProvider) Cached() bool { return true }

func (p *memProvider) Open(_ context.Context, progress basemodel.ProgressFunc) (io.ReadCloser, int64, error) {
	p.opens++
	if p.err != nil {
		return nil, 0, p.err
	}
	return io.NopCloser(bytes.NewReader(p.data)), int64(len(p.data)), nil
}

// fakeSession derives hidden states from token ids alone: position t gets a
// one-hot vector at dim ids[t] mod hidden. That makes head outputs fully
// predictable from the token sequence.
type fakeSession struct {
	hidden int
	model  []byte // live view of the engine buffer, for consistency probes
	expect []byte // snapshot of model[10:20] at session build time
	closed bool
}

func (s *fakeSession) Run(ids, mask []int64) ([]float32, error) {
	if s.expect != nil && !bytes.Equal(s.model[10:20], s.expect) {
		return nil, errors.New("buffer changed under a live session")
	}
	out := make([]float32, len(ids)*s.hidden)
	for t, id := range ids {
		out[t*s.hidden+int(id)%s.hidden] = 1
	}
	return out, nil
}

func (s *fakeSession) HiddenSize() int { return s.hidden }
func (s *fakeSession) Close() error    { s.closed = true; return nil }

type fakeFactory struct {
	hidden  int
	failNew bool
	probe   bool // snapshot model[10:20] and verify it on every Run
	news    int
}

func (f *fakeFactory) New(model []byte) (Session, error) {
	f.news++
	if f.failNew {
		return nil, errors.New("session build failed")
	}
	s := &fakeSession{hidden: f.hidden, model: model}
	if f.probe {
		s.expect = append([]byte(nil), model[10:20]...)
	}
	return s, nil
}

// Fixture adapter: two intents, person/date slots, hidden size 8.
//
// The tokenizer maps "call"=14, "▁john"=20, "▁tomorrow"=23. With one-hot
// hidden states those land on dims 6, 4 and 7; the slot head routes dim 4 to
// B-person and dim 7 to B-date, everything else to O. The intent head scores
// the leading position (dim 0, from the cls id) as [1, 3], so intent index 1
// wins with softmax confidence 1/(1+e^-2).
const testTokenizerJSON = `{"model":{"vocab":{"call":14,"▁john":20,"▁tomorrow":23},` +
	`"merges":["c a","ca l","cal l",` +
	`"▁ j","▁j o","▁jo h","▁joh n",` +
	`"▁ t","▁t o","▁to m","▁tom o","▁tomo r","▁tomor r","▁tomorr o","▁tomorro w"]}}`

const testConfigJSON = `{"intents":["other","create_reminder"],` +
	`"slot_labels":["O","B-person","B-date"],"max_length":16}`

const testHidden = 8

func testHeadsBytes(t *testing.T) []byte {
	t.Helper()
	intentW := make([][]float32, 2)
	for i := range intentW {
		intentW[i] = make([]float32, testHidden)
	}
	intentW[0][0] = 1
	intentW[1][0] = 3

	slotW := make([][]float32, 3)
	for i := range slotW {
		slotW[i] = make([]float32, testHidden)
	}
	slotW[1][4] = 10 // B-person fires on dim 4 (id 20)
	slotW[2][7] = 10 // B-date fires on dim 7 (id 23)

	return headsBytes(intentW, slotW, []float32{0, 0}, []float32{0.5, 0, 0})
}

func headsBytes(intentW, slotW [][]float32, intentB, slotB []float32) []byte {
	var buf bytes.Buffer
	writeMat := func(m [][]float32) {
		putU32(&buf, uint32(len(m)))
		putU32(&buf, uint32(len(m[0])))
		for _, row := range m {
			for _, v := range row {
				putU32(&buf, math.Float32bits(v))
			}
		}
	}
	writeVec := func(v []float32) {
		putU32(&buf, uint32(len(v)))
		for _, x := range v {
			putU32(&buf, math.Float32bits(x))
		}
	}
	writeMat(intentW)
	writeMat(slotW)
	writeVec(intentB)
	writeVec(slotB)
	return buf.Bytes()
}

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func patchBytes(t *testing.T, records ...patch.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := patch.Encode(&buf, &patch.Set{Records: records}); err != nil {
		t.Fatalf("encode patch: %v", err)
	}
	return buf.Bytes()
}

// fill returns n copies of b.
func fill(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func testBaseModel() []byte {
	base := make([]byte, 1000)
	for i := range base {
		base[i] = byte(i % 251)
	}
	return base
}

func newTestEngine(t *testing.T) (*Engine, *memProvider, *fakeFactory, *MemoryPublisher) {
	t.Helper()
	prov := &memProvider{data: testBaseModel()}
	fac := &fakeFactory{hidden: testHidden}
	pub := NewMemoryPublisher(0)
	e := NewWithConfig(Config{Provider: prov, Sessions: fac, Publisher: pub})
	return e, prov, fac, pub
}

func mustInitialize(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
}

// applyReq builds a full request for the fixture adapter with the given
// patch payload.
func applyReq(t *testing.T, id, version string, patchArtifact []byte) ApplyRequest {
	t.Helper()
	return ApplyRequest{
		ID:        id,
		Version:   version,
		Patch:     bytes.NewReader(patchArtifact),
		Heads:     bytes.NewReader(testHeadsBytes(t)),
		Tokenizer: bytes.NewReader([]byte(testTokenizerJSON)),
		Config:    bytes.NewReader([]byte(testConfigJSON)),
	}
}

func mustApply(t *testing.T, e *Engine, id, version string, patchArtifact []byte) {
	t.Helper()
	if err := e.ApplyAdapter(context.Background(), applyReq(t, id, version, patchArtifact)); err != nil {
		t.Fatalf("apply %s@%s: %v", id, version, err)
	}
}

func wantBufferEqual(t *testing.T, e *Engine, want []byte, what string) {
	t.Helper()
	got := e.buffer.Bytes()
	if !bytes.Equal(got, want) {
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("%s: buffer differs at offset %d: got %#x want %#x", what, i, got[i], want[i])
			}
		}
		t.Fatalf("%s: buffer length differs: got %d want %d", what, len(got), len(want))
	}
}
