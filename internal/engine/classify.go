package engine

import (
	"context"
	"fmt"
	"time"

	"adapterd/internal/heads"
	"adapterd/internal/slots"
	"adapterd/pkg/types"
)

// Classify tokenizes text, runs the patched encoder, and decodes intent and
// slots through the loaded adapter's heads. adapterID must match the loaded
// adapter exactly; there is no implicit swap.
func (e *Engine) Classify(ctx context.Context, adapterID, text string) (types.ClassifyResult, error) {
	var res types.ClassifyResult
	if err := ctx.Err(); err != nil {
		return res, err
	}
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return res, notInitializedError{}
	}
	if e.adapter == nil {
		return res, adapterMismatchError{requested: adapterID}
	}
	if e.adapter.ID != adapterID {
		return res, adapterMismatchError{requested: adapterID, loaded: e.adapter.ID}
	}
	if e.session == nil {
		return res, ErrRuntimeUnavailable("no inference session")
	}

	ids, mask := e.adapter.Tok.Encode(text)
	hidden, err := e.session.Run(ids, mask)
	if err != nil {
		return res, fmt.Errorf("inference: %w", err)
	}
	h := e.session.HiddenSize()
	if h <= 0 || len(hidden) < len(ids)*h {
		return res, fmt.Errorf("inference: got %d hidden floats for %d tokens", len(hidden), len(ids))
	}
	if h != e.adapter.Heads.HiddenSize() {
		return res, errArtifact("heads hidden size %d does not match encoder %d", e.adapter.Heads.HiddenSize(), h)
	}

	// Intent from the first position's hidden state.
	intentLogits := e.adapter.Heads.Intent.Forward(hidden[:h])
	best := heads.ArgMax(intentLogits)
	conf := heads.Softmax(intentLogits)[best]

	labels := make([]string, len(ids))
	for t := range ids {
		slotLogits := e.adapter.Heads.Slot.Forward(hidden[t*h : (t+1)*h])
		labels[t] = e.adapter.SlotLabels[heads.ArgMax(slotLogits)]
	}

	res = types.ClassifyResult{
		Intent:      e.adapter.Intents[best],
		Confidence:  float64(conf),
		Slots:       slots.Decode(ids, labels, e.adapter.Tok.TokenForID),
		TokenLabels: labels,
	}
	e.bumpClassifications()
	metricClassifyDuration.Observe(time.Since(start).Seconds())
	e.publish("classified", adapterID, map[string]any{"intent": res.Intent})
	return res, nil
}
