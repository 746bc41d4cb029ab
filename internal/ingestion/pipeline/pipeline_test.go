package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/lexgraph-backend/internal/ingestion/extractor"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

func newTestPipeline(t *testing.T, tr Translator) *Pipeline {
	t.Helper()
	det, err := extractor.DefaultLanguageDetector()
	require.NoError(t, err)
	return New(logger.Nop(), DefaultConfig(), det, tr, observability.New())
}

func TestIngestScenario(t *testing.T) {
	p := newTestPipeline(t, nil)
	res := p.Ingest(context.Background(), RawDocument{
		Content:          "Article 1. This law shall apply to all persons.",
		Title:            "Sample Law",
		JurisdictionCode: "US",
	}, nil, DefaultOptions())

	require.True(t, res.Success, "errors: %v", res.Errors)
	require.NotNil(t, res.Output)
	out := res.Output
	assert.Equal(t, "US", out.Jurisdiction)
	assert.Equal(t, "en", out.OriginalLanguage)
	assert.Equal(t, 1, out.VersionNumber)
	assert.Equal(t, "Sample Law", out.Title)
	assert.Equal(t, "national", out.LegalLevel)
	assert.Equal(t, "statute", out.DocumentType)
	assert.Equal(t, res.DocumentID, out.DocumentID)
	_, err := uuid.Parse(out.DocumentID)
	assert.NoError(t, err)
	assert.Len(t, out.SentenceAlignment, 2)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, out.NormalizedText, extractor.NormalizeText(out.OriginalText))
}

func TestIngestRejectsShortContent(t *testing.T) {
	p := newTestPipeline(t, nil)
	for _, content := range []string{"", "short", "         "} {
		res := p.Ingest(context.Background(), RawDocument{Content: content, JurisdictionCode: "US"}, nil, DefaultOptions())
		assert.False(t, res.Success, content)
		assert.Nil(t, res.Output)
		require.Len(t, res.Errors, 1)
	}
	res := p.Ingest(context.Background(), RawDocument{Content: ""}, nil, DefaultOptions())
	assert.Equal(t, ErrMissingContent, res.Errors[0])
	res = p.Ingest(context.Background(), RawDocument{Content: "short"}, nil, DefaultOptions())
	assert.Equal(t, ErrContentTooShort, res.Errors[0])
}

func TestIngestUnknownJurisdictionFails(t *testing.T) {
	p := newTestPipeline(t, nil)
	res := p.Ingest(context.Background(), RawDocument{Content: "Article 1. This law shall apply to all persons."}, nil, DefaultOptions())
	assert.False(t, res.Success)
	assert.Nil(t, res.Output)
	assert.Contains(t, res.Errors, ErrJurisdictionUnknown)
	assert.NotEmpty(t, res.DocumentID)
}

func TestIngestLowConfidenceIsWarning(t *testing.T) {
	p := newTestPipeline(t, fixedTranslator{conf: 0.1})
	res := p.Ingest(context.Background(), RawDocument{
		Content:          "Стаття 1. Цей закон застосовується до всіх осіб.",
		JurisdictionCode: "UA",
	}, nil, DefaultOptions())
	require.True(t, res.Success, "errors: %v", res.Errors)
	assert.Contains(t, res.Warnings, WarnLowConfidence)
	assert.Equal(t, "uk", res.Output.OriginalLanguage)
	assert.InDelta(t, 0.1, res.Output.Metadata.TranslationConfidence, 1e-9)
}

func TestIngestNonEnglishStubConfidence(t *testing.T) {
	p := newTestPipeline(t, nil)
	res := p.Ingest(context.Background(), RawDocument{
		Content:          "Стаття 1. Цей закон застосовується до всіх осіб.",
		JurisdictionCode: "UA",
	}, nil, DefaultOptions())
	require.True(t, res.Success)
	assert.Empty(t, res.Warnings)
	assert.InDelta(t, 0.4, res.Output.Metadata.TranslationConfidence, 1e-9)
	assert.Len(t, res.Output.SentenceAlignment, 2)
}

func TestIngestTranslatorErrorDegrades(t *testing.T) {
	p := newTestPipeline(t, fixedTranslator{err: errors.New("mt offline")})
	res := p.Ingest(context.Background(), RawDocument{Content: "Article 1. This law shall apply.", JurisdictionCode: "US"}, nil, DefaultOptions())
	require.True(t, res.Success)
	assert.Contains(t, res.Warnings, WarnLowConfidence)
	assert.Len(t, res.Warnings, 2)
}

func TestIngestSourceMetadataAndIDs(t *testing.T) {
	p := newTestPipeline(t, nil)
	src := &SourceMetadata{Module: "EU", JurisdictionCode: "EU", DocumentType: "regulation", SourceURL: "https://eur-lex.europa.eu/eli/reg/2016/679"}
	res := p.Ingest(context.Background(), RawDocument{
		Content:    "Regulation (EU) 2016/679, CELEX 32016R0679. It applies to processing of personal data.",
		ExternalID: "gdpr",
	}, src, Options{GenerateID: false})

	require.True(t, res.Success, "errors: %v", res.Errors)
	out := res.Output
	assert.Equal(t, "gdpr", out.DocumentID)
	assert.Equal(t, "EU", out.Jurisdiction)
	assert.Equal(t, "regional", out.LegalLevel)
	assert.Equal(t, "regulation", out.DocumentType)
	assert.Equal(t, src.SourceURL, out.SourceURL)
	assert.Equal(t, "Untitled", out.Title)
	assert.Equal(t, "32016R0679", out.Metadata.DocumentIdentifiers[extractor.IdentifierCelex])
	assert.Equal(t, "gdpr", out.Metadata.DocumentIdentifiers[extractor.IdentifierExternalID])
}

func TestIngestDeclaredLanguageWins(t *testing.T) {
	p := newTestPipeline(t, nil)
	res := p.Ingest(context.Background(), RawDocument{
		Content:          "Article 1. This law shall apply to all persons.",
		JurisdictionCode: "US",
		SourceLanguage:   "FR",
	}, nil, DefaultOptions())
	require.True(t, res.Success)
	assert.Equal(t, "fr", res.Output.OriginalLanguage)
	assert.Equal(t, "fr", res.Output.Metadata.LanguageCode)
}

type fixedTranslator struct {
	conf float64
	err  error
}

func (f fixedTranslator) Translate(_ context.Context, text, _ string) (Translation, error) {
	if f.err != nil {
		return Translation{}, f.err
	}
	return Translation{NormalizedEnglish: text, Confidence: f.conf}, nil
}
