// Package slots decodes per-token BIO label sequences into named slot values.
package slots

import (
	"strings"

	"adapterd/internal/tokenizer"
)

// Decode walks tokens and their parallel BIO labels and extracts named spans.
// The scan starts at index 1 (past the class-start position) and stops at the
// first separator or pad id. tokenFor maps a vocabulary id to its surface
// form. Multiple spans of the same type are all retained, in order.
func Decode(ids []int64, labels []string, tokenFor func(int64) string) map[string][]string {
	out := make(map[string][]string)
	curType := ""
	buf := ""

	flush := func() {
		if curType == "" {
			return
		}
		if v := surface(buf); v != "" {
			out[curType] = append(out[curType], v)
		}
		curType = ""
		buf = ""
	}

	n := len(ids)
	if len(labels) < n {
		n = len(labels)
	}
	for i := 1; i < n; i++ {
		id := ids[i]
		if id == tokenizer.SepID || id == tokenizer.PadID {
			break
		}
		label := labels[i]
		switch {
		case strings.HasPrefix(label, "B-"):
			flush()
			curType = label[len("B-"):]
			buf = tokenFor(id)
		case strings.HasPrefix(label, "I-") && curType == label[len("I-"):]:
			buf += tokenFor(id)
		default:
			// O, a mismatched I-, or anything unexpected ends the span.
			flush()
		}
	}
	flush()
	return out
}

// surface turns accumulated sub-tokens into a caller-facing value: word
// boundary markers become spaces, surrounding whitespace is trimmed.
func surface(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, tokenizer.Marker, " "))
}
