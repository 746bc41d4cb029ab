package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferLegalLevel(t *testing.T) {
	cases := map[string]string{
		"INTERNATIONAL": "international",
		"UN_HRC":        "international",
		"EU":            "regional",
		"UA":            "national",
		"us":            "national",
		"UA_OBLAST":     "subnational",
		"UA_CITY":       "subnational",
		"US_STATE":      "subnational",
		"US_CIRCUIT":    "subnational",
		"FEDERAL":       "national",
	}
	for code, want := range cases {
		assert.Equal(t, want, InferLegalLevel(code), code)
	}
}

func TestParseDate(t *testing.T) {
	for in, want := range map[string]string{
		"2022-03-01":           "2022-03-01",
		"01.03.2022":           "2022-03-01",
		"2022-03-01T10:00:00Z": "2022-03-01",
		"March 1, 2022":        "2022-03-01",
		"1 March 2022":         "2022-03-01",
	} {
		got := ParseDate(in)
		require.NotNil(t, got, in)
		assert.Equal(t, want, *got, in)
	}
	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("not a date"))
}

func TestExtractIdentifiersFromContent(t *testing.T) {
	raw := RawDocument{Content: "See 31 CFR § 501.123 and Regulation 32016R0679 and S/RES/2334."}
	ids := ExtractIdentifiers(raw, nil)
	assert.Equal(t, "31 CFR § 501.123", ids[IdentifierCFR])
	assert.Equal(t, "32016R0679", ids[IdentifierCelex])
	assert.Equal(t, "S/RES/2334", ids[IdentifierUNSymbol])
	_, hasRada := ids[IdentifierRada]
	assert.False(t, hasRada)

	ids = ExtractIdentifiers(RawDocument{Content: "Відповідно до 254-ВР закон діє"}, nil)
	assert.Equal(t, "254-ВР", ids[IdentifierRada])
}

func TestExtractIdentifiersExplicitWins(t *testing.T) {
	raw := RawDocument{Content: "Regulation 32016R0679", CelexID: "32019L0001"}
	ids := ExtractIdentifiers(raw, &SourceMetadata{ExternalID: "src-1"})
	assert.Equal(t, "32019L0001", ids[IdentifierCelex])
	assert.Equal(t, "src-1", ids[IdentifierExternalID])
}

func TestExtractMetadataPrecedence(t *testing.T) {
	src := &SourceMetadata{Module: "EU", JurisdictionCode: "EU", DocumentType: "regulation", SourceURL: "https://eur-lex.europa.eu"}

	m := ExtractMetadata(RawDocument{Content: "x"}, src, 0.4, "de")
	assert.Equal(t, "EU", m.Jurisdiction)
	assert.Equal(t, "regional", m.LegalLevel)
	assert.Equal(t, "regulation", m.DocumentType)
	assert.Equal(t, "de", m.LanguageCode)
	assert.Equal(t, "EU", m.Module)
	require.NotNil(t, m.SourceURL)
	assert.Nil(t, m.Authority)
	assert.InDelta(t, 0.4, m.TranslationConfidence, 1e-9)

	m = ExtractMetadata(RawDocument{Content: "x", JurisdictionCode: "UA", DocumentType: "decision", SourceLanguage: "UK"}, src, 1, "ru")
	assert.Equal(t, "UA", m.Jurisdiction)
	assert.Equal(t, "national", m.LegalLevel)
	assert.Equal(t, "decision", m.DocumentType)
	assert.Equal(t, "uk", m.LanguageCode)

	m = ExtractMetadata(RawDocument{Content: "x"}, nil, 1, "")
	assert.Equal(t, JurisdictionUnknown, m.Jurisdiction)
	assert.Equal(t, "statute", m.DocumentType)
	assert.Equal(t, "en", m.LanguageCode)
}
