// Package heads evaluates an adapter's intent and slot classification layers
// over encoder hidden states. The math is deliberately plain loops over flat
// float32 slices: one pooled vector and one vector per token per call, small
// enough that auditable simplicity beats a tensor dependency.
package heads

import "math"

// Linear is a dense layer with a flat row-major weight matrix.
type Linear struct {
	Out int
	In  int
	W   []float32 // len Out*In, row-major
	B   []float32 // len Out
}

// Forward computes logits[i] = B[i] + sum_j x[j]*W[i*In+j].
// x must have length In.
func (l *Linear) Forward(x []float32) []float32 {
	logits := make([]float32, l.Out)
	for i := 0; i < l.Out; i++ {
		row := l.W[i*l.In : (i+1)*l.In]
		acc := float64(l.B[i])
		for j, w := range row {
			acc += float64(x[j]) * float64(w)
		}
		logits[i] = float32(acc)
	}
	return logits
}

// Heads bundles one adapter's intent and slot layers. Both share the encoder
// hidden size as their in-dimension.
type Heads struct {
	Intent Linear
	Slot   Linear
}

// HiddenSize returns the shared in-dimension.
func (h *Heads) HiddenSize() int { return h.Intent.In }

// Softmax returns the probability distribution over logits. The max logit is
// subtracted before exponentiating for numerical stability.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	exps := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		exps[i] = math.Exp(float64(v - max))
		sum += exps[i]
	}
	out := make([]float32, len(logits))
	for i, e := range exps {
		out[i] = float32(e / sum)
	}
	return out
}

// ArgMax returns the index of the largest value, first index on ties.
func ArgMax(v []float32) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
