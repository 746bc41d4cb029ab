package extractor

import (
	"sort"
	"strings"
	"unicode"
)

// SentenceAlignment maps one source sentence to one target sentence.
type SentenceAlignment struct {
	SourceIdx  int     `json:"source_idx"`
	TargetIdx  int     `json:"target_idx"`
	SourceSpan string  `json:"source_span"`
	TargetSpan string  `json:"target_span"`
	Confidence float64 `json:"confidence,omitempty"`
}

// SplitSentences cuts after '.', '!' or '?' when followed by whitespace.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return []string{}
	}
	runes := []rune(text)
	out := make([]string, 0, 8)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) || i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isTerminal(r rune) bool { return r == '.' || r == '!' || r == '?' }

// IdentityAlignment pairs every sentence of text with itself.
func IdentityAlignment(text string) []SentenceAlignment {
	sents := SplitSentences(text)
	out := make([]SentenceAlignment, 0, len(sents))
	for i, s := range sents {
		out = append(out, SentenceAlignment{SourceIdx: i, TargetIdx: i, SourceSpan: s, TargetSpan: s, Confidence: 1})
	}
	return out
}

// BuildOneToOneAlignment pairs sentences by index up to the shorter side.
func BuildOneToOneAlignment(source, target string) []SentenceAlignment {
	src := SplitSentences(source)
	dst := SplitSentences(target)
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	out := make([]SentenceAlignment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, SentenceAlignment{SourceIdx: i, TargetIdx: i, SourceSpan: src[i], TargetSpan: dst[i], Confidence: 1})
	}
	return out
}

// MergeAlignments appends incoming pairs not already present, then sorts by
// (SourceIdx, TargetIdx). The first occurrence of a pair wins.
func MergeAlignments(existing, incoming []SentenceAlignment) []SentenceAlignment {
	type key struct{ s, t int }
	seen := make(map[key]bool, len(existing)+len(incoming))
	out := make([]SentenceAlignment, 0, len(existing)+len(incoming))
	for _, batch := range [][]SentenceAlignment{existing, incoming} {
		for _, a := range batch {
			k := key{a.SourceIdx, a.TargetIdx}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SourceIdx != out[j].SourceIdx {
			return out[i].SourceIdx < out[j].SourceIdx
		}
		return out[i].TargetIdx < out[j].TargetIdx
	})
	return out
}
