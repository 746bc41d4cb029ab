package pipeline

import (
	"context"
	"strings"

	"github.com/yungbote/lexgraph-backend/internal/ingestion/extractor"
)

type Translation struct {
	NormalizedEnglish string
	Confidence        float64
	Alignments        []SentenceAlignment
}

// Translator produces the canonical English form of a document.
type Translator interface {
	Translate(ctx context.Context, text, sourceLanguage string) (Translation, error)
}

// StubTranslator performs no translation. English input passes through with
// full confidence and identity alignment; anything else passes through at
// 0.4 with no alignment so the pipeline falls back to a 1:1 alignment.
type StubTranslator struct{}

const (
	stubForeignConfidence = 0.4
	englishSampleRunes    = 500
)

func (StubTranslator) Translate(_ context.Context, text, sourceLanguage string) (Translation, error) {
	if strings.EqualFold(strings.TrimSpace(sourceLanguage), "en") || looksEnglish(text) {
		return Translation{
			NormalizedEnglish: text,
			Confidence:        1,
			Alignments:        extractor.IdentityAlignment(text),
		}, nil
	}
	return Translation{NormalizedEnglish: text, Confidence: stubForeignConfidence, Alignments: []SentenceAlignment{}}, nil
}

func looksEnglish(text string) bool {
	runes := []rune(text)
	if len(runes) > englishSampleRunes {
		runes = runes[:englishSampleRunes]
	}
	return extractor.IsLatinOnly(string(runes))
}
