package jurisdiction

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const signalTablesEnv = "JURISDICTION_SIGNALS_YAML"

//go:embed signals.yaml
var signalsFS embed.FS

const (
	KindCitation    = "citation"
	KindInstitution = "institution"
	KindContext     = "context"
	KindLanguage    = "language"
)

type yamlSignal struct {
	Code    string  `yaml:"code"`
	Score   float64 `yaml:"score"`
	Pattern string  `yaml:"pattern"`
	CI      bool    `yaml:"ci"`
	Word    *bool   `yaml:"word"`
}

type yamlTables struct {
	Version     int          `yaml:"version"`
	Citation    []yamlSignal `yaml:"citation"`
	Institution []yamlSignal `yaml:"institution"`
	Context     []yamlSignal `yaml:"context"`
	Language    struct {
		Code                   string  `yaml:"code"`
		UkrainianSpecificScore float64 `yaml:"ukrainian_specific_score"`
		CyrillicScore          float64 `yaml:"cyrillic_score"`
	} `yaml:"language"`
}

type rule struct {
	kind  string
	code  string
	score float64
	re    *regexp.Regexp
	group int
}

// SignalTables is the compiled, immutable classifier configuration.
type SignalTables struct {
	rules             []rule
	languageCode      string
	ukrainianScore    float64
	genericCyrillic   float64
	codesInTableOrder []string
}

var (
	defaultTablesOnce sync.Once
	defaultTables     *SignalTables
	defaultTablesErr  error
)

// DefaultSignalTables parses the embedded tables, or the file named by
// JURISDICTION_SIGNALS_YAML, once per process.
func DefaultSignalTables() (*SignalTables, error) {
	defaultTablesOnce.Do(func() {
		data, err := readSignalTables()
		if err != nil {
			defaultTablesErr = err
			return
		}
		defaultTables, defaultTablesErr = ParseSignalTables(data)
	})
	return defaultTables, defaultTablesErr
}

func readSignalTables() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(signalTablesEnv)); path != "" {
		return os.ReadFile(path)
	}
	return signalsFS.ReadFile("signals.yaml")
}

func ParseSignalTables(data []byte) (*SignalTables, error) {
	var parsed yamlTables
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse signal tables: %w", err)
	}
	t := &SignalTables{
		languageCode:    strings.TrimSpace(parsed.Language.Code),
		ukrainianScore:  parsed.Language.UkrainianSpecificScore,
		genericCyrillic: parsed.Language.CyrillicScore,
	}
	seen := map[string]bool{}
	for _, group := range []struct {
		kind string
		rows []yamlSignal
	}{
		{KindCitation, parsed.Citation},
		{KindInstitution, parsed.Institution},
		{KindContext, parsed.Context},
	} {
		for i, row := range group.rows {
			r, err := compileRule(group.kind, row)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", group.kind, i, err)
			}
			t.rules = append(t.rules, r)
			if !seen[r.code] {
				seen[r.code] = true
				t.codesInTableOrder = append(t.codesInTableOrder, r.code)
			}
		}
	}
	if len(t.rules) == 0 {
		return nil, errors.New("signal tables: no rules defined")
	}
	if t.languageCode != "" && !seen[t.languageCode] {
		t.codesInTableOrder = append(t.codesInTableOrder, t.languageCode)
	}
	return t, nil
}

func compileRule(kind string, row yamlSignal) (rule, error) {
	code := strings.TrimSpace(row.Code)
	if code == "" {
		return rule{}, errors.New("code is required")
	}
	if row.Score <= 0 {
		return rule{}, fmt.Errorf("%s: score must be positive", code)
	}
	if strings.TrimSpace(row.Pattern) == "" {
		return rule{}, fmt.Errorf("%s: pattern is required", code)
	}
	expr := "(" + row.Pattern + ")"
	group := 1
	if row.Word == nil || *row.Word {
		expr = `(?:^|[^\p{L}\p{N}_])` + expr + `(?:[^\p{L}\p{N}_]|$)`
	}
	if row.CI {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return rule{}, fmt.Errorf("%s: %w", code, err)
	}
	return rule{kind: kind, code: code, score: row.Score, re: re, group: group}, nil
}

// Codes lists every code the tables can emit, in table order.
func (t *SignalTables) Codes() []string {
	return append([]string(nil), t.codesInTableOrder...)
}
