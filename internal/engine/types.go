package engine

import (
	"strings"

	"adapterd/internal/heads"
	"adapterd/internal/tokenizer"
	"adapterd/pkg/types"
)

// State represents the engine lifecycle state.
type State string

const (
	StateNotInitialized State = "not_initialized"
	StateDownloading    State = "downloading"
	StateReady          State = "ready"
	StatePatching       State = "patching"
	StateError          State = "error"
)

// LoadedAdapter is the materialized state of one applied adapter: parsed
// heads, tokenizer, and label lists. It is replaced wholesale on the next
// successful apply and cleared on remove.
type LoadedAdapter struct {
	ID         string
	Version    string
	Tok        *tokenizer.Tokenizer
	Heads      *heads.Heads
	Intents    []string
	SlotLabels []string
}

// info builds the read-only projection exposed to callers.
func (a *LoadedAdapter) info() types.AdapterInfo {
	return types.AdapterInfo{
		ID:        a.ID,
		Version:   a.Version,
		Intents:   append([]string(nil), a.Intents...),
		SlotTypes: a.slotTypes(),
	}
}

// slotTypes derives distinct slot type names from the BIO label list, in
// first-appearance order.
func (a *LoadedAdapter) slotTypes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range a.SlotLabels {
		var name string
		switch {
		case strings.HasPrefix(l, "B-"):
			name = l[len("B-"):]
		case strings.HasPrefix(l, "I-"):
			name = l[len("I-"):]
		default:
			continue
		}
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// Snapshot is a read-only projection of engine state.
type Snapshot struct {
	State    State
	Progress float64
	Message  string
	Err      string
	Adapter  *types.AdapterInfo
}
