package engine

import (
	"encoding/json"
	"io"

	"adapterd/internal/heads"
	"adapterd/internal/patch"
	"adapterd/internal/tokenizer"
)

// adapterConfig is the JSON label manifest shipped with every adapter.
type adapterConfig struct {
	Intents    []string `json:"intents"`
	SlotLabels []string `json:"slot_labels"`
	MaxLength  int      `json:"max_length"`
}

const defaultMaxLength = 64

func parseAdapterConfig(r io.Reader) (adapterConfig, error) {
	var cfg adapterConfig
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return cfg, errArtifact("config: %v", err)
	}
	if len(cfg.Intents) == 0 {
		return cfg, errArtifact("config: intents list is empty")
	}
	if len(cfg.SlotLabels) == 0 {
		return cfg, errArtifact("config: slot_labels list is empty")
	}
	if cfg.MaxLength == 0 {
		cfg.MaxLength = defaultMaxLength
	}
	if cfg.MaxLength < 4 {
		return cfg, errArtifact("config: max_length %d leaves no room for content tokens", cfg.MaxLength)
	}
	return cfg, nil
}

// parseArtifacts decodes and cross-validates all four adapter artifacts.
// Runs before the exclusivity lock is taken so the critical section covers
// only buffer and session work.
func parseArtifacts(req ApplyRequest) (*LoadedAdapter, *patch.Set, error) {
	set, err := patch.Decode(req.Patch)
	if err != nil {
		return nil, nil, err
	}
	hd, err := heads.Parse(req.Heads)
	if err != nil {
		return nil, nil, errArtifact("heads: %v", err)
	}
	vocab, merges, err := tokenizer.ParseArtifact(req.Tokenizer)
	if err != nil {
		return nil, nil, errArtifact("tokenizer: %v", err)
	}
	cfg, err := parseAdapterConfig(req.Config)
	if err != nil {
		return nil, nil, err
	}

	if got, want := len(cfg.Intents), hd.Intent.Out; got != want {
		return nil, nil, errArtifact("config lists %d intents but intent head has %d rows", got, want)
	}
	if got, want := len(cfg.SlotLabels), hd.Slot.Out; got != want {
		return nil, nil, errArtifact("config lists %d slot labels but slot head has %d rows", got, want)
	}

	la := &LoadedAdapter{
		ID:         req.ID,
		Version:    req.Version,
		Tok:        tokenizer.New(vocab, merges, cfg.MaxLength),
		Heads:      hd,
		Intents:    cfg.Intents,
		SlotLabels: cfg.SlotLabels,
	}
	return la, set, nil
}
