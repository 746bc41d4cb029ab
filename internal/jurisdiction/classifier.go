// Package jurisdiction ranks candidate jurisdictions for free text and gates
// jurisdiction-scoped work behind an explicit confirmation step.
package jurisdiction

import (
	"sort"
	"strings"
)

type Signal struct {
	Kind  string  `json:"kind"`
	Match string  `json:"match"`
	Score float64 `json:"score"`
}

type Ranked struct {
	Code    string   `json:"code"`
	Score   float64  `json:"score"`
	Signals []Signal `json:"signals"`
}

// Classifier is stateless apart from its tables and safe for concurrent use.
type Classifier struct {
	tables *SignalTables
}

func NewClassifier(tables *SignalTables) *Classifier {
	return &Classifier{tables: tables}
}

// Classify sums matching signal weights per code. Results are sorted by score
// descending; equal scores keep the order in which codes first matched.
func (c *Classifier) Classify(query string) []Ranked {
	out := []Ranked{}
	if strings.TrimSpace(query) == "" || c == nil || c.tables == nil {
		return out
	}
	index := map[string]int{}
	add := func(code string, sig Signal) {
		i, ok := index[code]
		if !ok {
			i = len(out)
			index[code] = i
			out = append(out, Ranked{Code: code})
		}
		out[i].Score += sig.Score
		out[i].Signals = append(out[i].Signals, sig)
	}

	for _, r := range c.tables.rules {
		m := r.re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		add(r.code, Signal{Kind: r.kind, Match: strings.TrimSpace(m[r.group]), Score: r.score})
	}
	if c.tables.languageCode != "" {
		if cyr, uk := scanCyrillic(query); cyr {
			score := c.tables.genericCyrillic
			if uk {
				score = c.tables.ukrainianScore
			}
			if score > 0 {
				add(c.tables.languageCode, Signal{Kind: KindLanguage, Match: "Cyrillic", Score: score})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// DetectedCodes returns the distinct codes scoring at least minScore, in
// rank order.
func (c *Classifier) DetectedCodes(query string, minScore float64) []string {
	ranked := c.Classify(query)
	out := make([]string, 0, len(ranked))
	seen := map[string]bool{}
	for _, r := range ranked {
		if r.Score < minScore || seen[r.Code] {
			continue
		}
		seen[r.Code] = true
		out = append(out, r.Code)
	}
	return out
}

func scanCyrillic(s string) (cyrillic, ukrainianSpecific bool) {
	for _, r := range s {
		if r < 0x0400 || r > 0x04FF {
			continue
		}
		cyrillic = true
		switch r {
		case 'і', 'ї', 'є', 'ґ', 'І', 'Ї', 'Є', 'Ґ':
			return true, true
		}
	}
	return cyrillic, false
}
