package tokenizer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Tokenizer artifact layout (huggingface tokenizer.json subset):
//
//	{"model": {"vocab": {"<token>": id, ...}, "merges": ["first second", ...]}}
type artifact struct {
	Model struct {
		Vocab  map[string]int64 `json:"vocab"`
		Merges []string         `json:"merges"`
	} `json:"model"`
}

// ParseArtifact decodes a tokenizer artifact into a vocabulary and an ordered
// merge-rule list.
func ParseArtifact(r io.Reader) (map[string]int64, [][2]string, error) {
	var a artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, nil, fmt.Errorf("tokenizer artifact: %w", err)
	}
	if len(a.Model.Vocab) == 0 {
		return nil, nil, fmt.Errorf("tokenizer artifact: empty vocab")
	}
	merges := make([][2]string, 0, len(a.Model.Merges))
	for i, m := range a.Model.Merges {
		first, second, ok := strings.Cut(m, " ")
		if !ok || first == "" || second == "" {
			return nil, nil, fmt.Errorf("tokenizer artifact: malformed merge rule %d: %q", i, m)
		}
		merges = append(merges, [2]string{first, second})
	}
	return a.Model.Vocab, merges, nil
}
