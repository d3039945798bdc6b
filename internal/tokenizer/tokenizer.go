// Package tokenizer turns raw text plus an adapter-supplied vocabulary and
// merge table into fixed-length token-id and attention-mask arrays for the
// base encoder.
package tokenizer

import "strings"

// Special token ids fixed by the base model's pretrained vocabulary layout.
const (
	ClsID int64 = 0
	PadID int64 = 1
	SepID int64 = 2
	UnkID int64 = 3
)

// Marker prefixes every non-initial word so the vocabulary can distinguish
// word-initial sub-tokens from continuations.
const Marker = "▁"

// Tokenizer is a byte-pair-encoding tokenizer over one adapter's vocabulary.
// It is immutable after construction; Encode is pure.
type Tokenizer struct {
	vocab   map[string]int64
	reverse map[int64]string
	merges  [][2]string
	maxLen  int
}

// New builds a Tokenizer. maxLen is the fixed output sequence length N.
func New(vocab map[string]int64, merges [][2]string, maxLen int) *Tokenizer {
	reverse := make(map[int64]string, len(vocab))
	for tok, id := range vocab {
		reverse[id] = tok
	}
	return &Tokenizer{vocab: vocab, reverse: reverse, merges: merges, maxLen: maxLen}
}

// MaxLen returns the fixed sequence length N.
func (t *Tokenizer) MaxLen() int { return t.maxLen }

// TokenForID returns the surface form for a vocabulary id, or "" when the id
// is not in the vocabulary.
func (t *Tokenizer) TokenForID(id int64) string { return t.reverse[id] }

// Encode tokenizes text into exactly maxLen ids and a parallel 1/0 attention
// mask: [cls, content... (truncated silently at maxLen-2), sep, pad...].
//
// Words after the first are prefixed with the word-boundary marker, exploded
// into characters, then merged. Merge rules run strictly in list order with
// one left-to-right pass each, not rank-greedy BPE; this mirrors how the base
// model's adapters were trained and may diverge from reference BPE output on
// ambiguous inputs (see TestMergeOrderIsPerRuleNotRankGreedy).
func (t *Tokenizer) Encode(text string) (ids, mask []int64) {
	words := strings.Fields(strings.ToLower(text))
	var content []int64
	for wi, word := range words {
		if wi > 0 {
			word = Marker + word
		}
		toks := splitChars(word)
		for _, rule := range t.merges {
			toks = mergePass(toks, rule)
		}
		for _, tok := range toks {
			id, ok := t.vocab[tok]
			if !ok {
				id, ok = t.vocab[Marker+tok]
			}
			if !ok {
				id = UnkID
			}
			content = append(content, id)
		}
	}
	if len(content) > t.maxLen-2 {
		content = content[:t.maxLen-2]
	}

	ids = make([]int64, t.maxLen)
	mask = make([]int64, t.maxLen)
	ids[0] = ClsID
	mask[0] = 1
	for i, id := range content {
		ids[i+1] = id
		mask[i+1] = 1
	}
	ids[len(content)+1] = SepID
	mask[len(content)+1] = 1
	for i := len(content) + 2; i < t.maxLen; i++ {
		ids[i] = PadID
	}
	return ids, mask
}

func splitChars(word string) []string {
	out := make([]string, 0, len(word))
	for _, r := range word {
		out = append(out, string(r))
	}
	return out
}

// mergePass performs one left-to-right pass for a single rule, merging every
// adjacent (first, second) occurrence it meets.
func mergePass(toks []string, rule [2]string) []string {
	if len(toks) < 2 {
		return toks
	}
	out := make([]string, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		if i+1 < len(toks) && toks[i] == rule[0] && toks[i+1] == rule[1] {
			out = append(out, toks[i]+toks[i+1])
			i++
			continue
		}
		out = append(out, toks[i])
	}
	return out
}
