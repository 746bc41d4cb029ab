package extractor

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

const languageTablesEnv = "INGEST_LANGUAGES_YAML"

//go:embed languages.yaml
var languagesFS embed.FS

const (
	minDetectRunes    = 15
	detectSampleRunes = 5000
	minDetectScore    = 0.25
	markerBonus       = 0.05
	LanguageUnknown   = "unknown"
)

type Detection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

type markerSet struct {
	Lang   string   `yaml:"lang"`
	Script string   `yaml:"script"`
	Words  []string `yaml:"words"`
}

type languageTables struct {
	Version   int         `yaml:"version"`
	Supported []string    `yaml:"supported"`
	Markers   []markerSet `yaml:"markers"`
}

// LanguageDetector scores text with script heuristics and marker words. It
// holds only immutable tables and is safe for concurrent use.
type LanguageDetector struct {
	supported map[string]bool
	markers   []markerSet
	byLang    map[string]map[string]bool
}

var (
	defaultDetectorOnce sync.Once
	defaultDetector     *LanguageDetector
	defaultDetectorErr  error
)

// DefaultLanguageDetector loads the embedded tables, or the file named by
// INGEST_LANGUAGES_YAML, once per process.
func DefaultLanguageDetector() (*LanguageDetector, error) {
	defaultDetectorOnce.Do(func() {
		var data []byte
		if path := strings.TrimSpace(os.Getenv(languageTablesEnv)); path != "" {
			data, defaultDetectorErr = os.ReadFile(path)
		} else {
			data, defaultDetectorErr = languagesFS.ReadFile("languages.yaml")
		}
		if defaultDetectorErr != nil {
			return
		}
		defaultDetector, defaultDetectorErr = NewLanguageDetector(data)
	})
	return defaultDetector, defaultDetectorErr
}

// DetectLanguage runs the default detector. A broken override file yields
// "unknown" rather than an error; callers that care load tables explicitly.
func DetectLanguage(text string) Detection {
	d, err := DefaultLanguageDetector()
	if err != nil {
		return Detection{Language: LanguageUnknown}
	}
	return d.Detect(text)
}

func IsSupportedLanguage(code string) bool {
	d, err := DefaultLanguageDetector()
	if err != nil {
		return false
	}
	return d.IsSupported(code)
}

func NewLanguageDetector(yamlData []byte) (*LanguageDetector, error) {
	var t languageTables
	if err := yaml.Unmarshal(yamlData, &t); err != nil {
		return nil, fmt.Errorf("parse language tables: %w", err)
	}
	if len(t.Supported) == 0 {
		return nil, errors.New("language tables: no supported languages")
	}
	d := &LanguageDetector{
		supported: make(map[string]bool, len(t.Supported)),
		byLang:    make(map[string]map[string]bool, len(t.Markers)),
	}
	for _, code := range t.Supported {
		d.supported[strings.ToLower(strings.TrimSpace(code))] = true
	}
	for _, m := range t.Markers {
		lang := strings.ToLower(strings.TrimSpace(m.Lang))
		if !d.supported[lang] {
			return nil, fmt.Errorf("language tables: markers for unsupported language %q", m.Lang)
		}
		words := make(map[string]bool, len(m.Words))
		for _, w := range m.Words {
			words[strings.ToLower(strings.TrimSpace(w))] = true
		}
		m.Lang = lang
		d.markers = append(d.markers, m)
		d.byLang[lang] = words
	}
	return d, nil
}

func (d *LanguageDetector) IsSupported(code string) bool {
	return d.supported[strings.ToLower(strings.TrimSpace(code))]
}

// Detect returns the most likely language of text. Text shorter than 15
// characters, or scoring below 0.25, is reported as "unknown".
func (d *LanguageDetector) Detect(text string) Detection {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) < minDetectRunes {
		return Detection{Language: LanguageUnknown, Confidence: 0}
	}
	if len(runes) > detectSampleRunes {
		runes = runes[:detectSampleRunes]
	}
	sample := string(runes)
	tokens := wordTokens(sample)
	scripts := scanScripts(sample)

	bestLang, bestScore := LanguageUnknown, 0.0
	consider := func(lang string, score float64) {
		if score > bestScore {
			bestLang, bestScore = lang, score
		}
	}

	if scripts.cyrillic {
		if scripts.ukrainianSpecific {
			consider("uk", 0.9+d.hits("uk", tokens)*markerBonus)
		} else {
			consider("ru", 0.85+d.hits("ru", tokens)*markerBonus)
		}
	}
	if scripts.greek {
		consider("el", 0.7+d.hits("el", tokens)*markerBonus)
	}
	if scripts.arabic {
		consider("ar", 0.8)
	}
	if scripts.cjk {
		consider("zh", 0.75)
	}

	if bestLang == LanguageUnknown || bestScore < 0.5 {
		for _, m := range d.markers {
			if m.Script != "" {
				continue
			}
			hits := d.hits(m.Lang, tokens)
			if hits == 0 {
				continue
			}
			consider(m.Lang, minFloat(0.3+hits*0.1, 0.95))
		}
	}

	if bestLang == LanguageUnknown && IsLatinOnly(sample) {
		bestLang, bestScore = "en", 0.5
	}
	if bestScore < minDetectScore {
		return Detection{Language: LanguageUnknown, Confidence: minFloat(bestScore, 1)}
	}
	return Detection{Language: bestLang, Confidence: minFloat(bestScore, 1)}
}

// hits counts the distinct marker words of lang present in tokens.
func (d *LanguageDetector) hits(lang string, tokens map[string]bool) float64 {
	n := 0
	for w := range d.byLang[lang] {
		if tokens[w] {
			n++
		}
	}
	return float64(n)
}

type scriptFlags struct {
	cyrillic          bool
	ukrainianSpecific bool
	greek             bool
	arabic            bool
	cjk               bool
}

func scanScripts(s string) scriptFlags {
	var f scriptFlags
	for _, r := range s {
		switch {
		case r >= 0x0400 && r <= 0x04FF:
			f.cyrillic = true
			if isUkrainianSpecific(r) {
				f.ukrainianSpecific = true
			}
		case r >= 0x0370 && r <= 0x03FF:
			f.greek = true
		case r >= 0x0600 && r <= 0x06FF:
			f.arabic = true
		case (r >= 0x4E00 && r <= 0x9FFF) || (r >= 0x3040 && r <= 0x30FF):
			f.cjk = true
		}
	}
	return f
}

// Є І Ї і ї Ґ ґ do not occur in Russian.
func isUkrainianSpecific(r rune) bool {
	switch r {
	case 0x0404, 0x0406, 0x0407, 0x0456, 0x0457, 0x0490, 0x0491:
		return true
	}
	return false
}

func ContainsCyrillic(s string) (cyrillic, ukrainianSpecific bool) {
	f := scanScripts(s)
	return f.cyrillic, f.ukrainianSpecific
}

// IsLatinOnly reports whether s holds only ASCII word characters, whitespace,
// common punctuation and Latin-1/Latin Extended letters.
func IsLatinOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r < 0x80:
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || strings.ContainsRune(`_.,;:!'"-()[]`, r) {
				continue
			}
			return false
		case r >= 0x00C0 && r <= 0x024F:
			continue
		default:
			if unicode.IsSpace(r) {
				continue
			}
			return false
		}
	}
	return true
}

func wordTokens(s string) map[string]bool {
	out := map[string]bool{}
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		out[f] = true
	}
	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
