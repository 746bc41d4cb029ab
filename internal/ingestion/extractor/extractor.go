// Package extractor holds the pure text stages of legal document ingestion:
// normalization, language detection, sentence segmentation and metadata
// extraction. Nothing here touches storage.
package extractor

// RawDocument is the caller supplied ingestion input. Only Content is
// required; every other field is a hint that wins over inference.
type RawDocument struct {
	Content          string `json:"content"`
	Title            string `json:"title,omitempty"`
	SourceURL        string `json:"sourceUrl,omitempty"`
	JurisdictionCode string `json:"jurisdictionCode,omitempty"`
	LegalLevel       string `json:"legalLevel,omitempty"`
	DocumentType     string `json:"documentType,omitempty"`
	Authority        string `json:"authority,omitempty"`
	DateAdopted      string `json:"dateAdopted,omitempty"`
	DateEffective    string `json:"dateEffective,omitempty"`
	DateEffectiveTo  string `json:"dateEffectiveTo,omitempty"`
	CelexID          string `json:"celexId,omitempty"`
	RadaID           string `json:"radaId,omitempty"`
	UNSymbol         string `json:"unSymbol,omitempty"`
	CFRCitation      string `json:"cfrCitation,omitempty"`
	ExternalID       string `json:"externalId,omitempty"`
	SourceLanguage   string `json:"sourceLanguage,omitempty"`
}

// SourceMetadata is the per-source override block, usually set by the module
// feeding documents in (EU, UKRAINE, US, INTERNATIONAL).
type SourceMetadata struct {
	Module           string `json:"module,omitempty"`
	JurisdictionCode string `json:"jurisdictionCode,omitempty"`
	LegalLevel       string `json:"legalLevel,omitempty"`
	DocumentType     string `json:"documentType,omitempty"`
	Authority        string `json:"authority,omitempty"`
	SourceURL        string `json:"sourceUrl,omitempty"`
	ExternalID       string `json:"externalId,omitempty"`
}

type ExtractedMetadata struct {
	Jurisdiction          string            `json:"jurisdiction"`
	LegalLevel            string            `json:"legalLevel"`
	DocumentType          string            `json:"documentType"`
	Authority             *string           `json:"authority"`
	DateAdopted           *string           `json:"dateAdopted"`
	DateEffective         *string           `json:"dateEffective"`
	DateEffectiveTo       *string           `json:"dateEffectiveTo"`
	SourceURL             *string           `json:"sourceUrl"`
	TranslationConfidence float64           `json:"translationConfidence"`
	LanguageCode          string            `json:"languageCode"`
	DocumentIdentifiers   map[string]string `json:"documentIdentifiers"`
	Module                string            `json:"module,omitempty"`
}

const JurisdictionUnknown = "UNKNOWN"

// Identifier keys used in ExtractedMetadata.DocumentIdentifiers.
const (
	IdentifierCelex      = "celex"
	IdentifierRada       = "rada"
	IdentifierUNSymbol   = "unSymbol"
	IdentifierCFR        = "cfr"
	IdentifierExternalID = "externalId"
)
