package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		want    string
		minConf float64
	}{
		{"too short", "hi there", LanguageUnknown, 0},
		{"ukrainian", "Стаття 1. Закон України про захист прав людини", "uk", 0.9},
		{"russian", "Статья 1. Настоящий закон регулирует отношения", "ru", 0.85},
		{"english", "The provisions of this article shall apply to all persons.", "en", 0.5},
		{"german", "Der Artikel gilt für die Republik und den Bürger", "de", 0.5},
		{"greek", "Το άρθρο 1 και του νόμου ισχύει", "el", 0.7},
		{"arabic", "هذا القانون ينطبق على جميع الأشخاص", "ar", 0.8},
		{"latin without markers", "Xyzzy plugh quux frobozz zork", "en", 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectLanguage(tc.text)
			assert.Equal(t, tc.want, got.Language)
			assert.GreaterOrEqual(t, got.Confidence, tc.minConf)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestIsSupportedLanguage(t *testing.T) {
	for _, code := range []string{"uk", "EN", " de ", "sv", "mt"} {
		assert.True(t, IsSupportedLanguage(code), code)
	}
	for _, code := range []string{"", "xx", "unknown", "eng"} {
		assert.False(t, IsSupportedLanguage(code), code)
	}
}

func TestNewLanguageDetectorRejectsUnknownMarkerLanguage(t *testing.T) {
	_, err := NewLanguageDetector([]byte("supported: [en]\nmarkers:\n  - lang: xx\n    words: [a]\n"))
	require.Error(t, err)

	_, err = NewLanguageDetector([]byte("markers: []\n"))
	require.Error(t, err)
}

func TestDetectorMarkerTieGoesToFirstListed(t *testing.T) {
	d, err := NewLanguageDetector([]byte(`
supported: [aa, bb]
markers:
  - lang: bb
    words: [zork]
  - lang: aa
    words: [zork]
`))
	require.NoError(t, err)
	got := d.Detect("zork zork zork zork zork")
	assert.Equal(t, "bb", got.Language)
	assert.InDelta(t, 0.4, got.Confidence, 1e-9)
}
