package pipeline

import "github.com/yungbote/lexgraph-backend/internal/ingestion/extractor"

type (
	RawDocument       = extractor.RawDocument
	SourceMetadata    = extractor.SourceMetadata
	ExtractedMetadata = extractor.ExtractedMetadata
	SentenceAlignment = extractor.SentenceAlignment
)

// Output is the graph-ready payload handed back to the caller, who persists
// it through the graph service.
type Output struct {
	DocumentID        string              `json:"document_id"`
	Title             string              `json:"title"`
	Jurisdiction      string              `json:"jurisdiction"`
	LegalLevel        string              `json:"legal_level"`
	DocumentType      string              `json:"document_type"`
	Authority         string              `json:"authority"`
	OriginalLanguage  string              `json:"original_language"`
	OriginalText      string              `json:"original_text"`
	NormalizedText    string              `json:"normalized_text"`
	SentenceAlignment []SentenceAlignment `json:"sentence_alignment"`
	Metadata          ExtractedMetadata   `json:"metadata"`
	VersionNumber     int                 `json:"version_number"`
	SourceURL         string              `json:"source_url"`
}

// Result never carries a Go error: content problems are reported in Errors,
// non-fatal conditions in Warnings.
type Result struct {
	Success    bool     `json:"success"`
	Output     *Output  `json:"output,omitempty"`
	DocumentID string   `json:"document_id,omitempty"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
}

type Options struct {
	// GenerateID=false reuses RawDocument.ExternalID as the document id when set.
	GenerateID bool
}

func DefaultOptions() Options { return Options{GenerateID: true} }

const (
	ErrMissingContent      = "Missing or invalid content"
	ErrContentTooShort     = "Content too short"
	ErrJurisdictionUnknown = "Jurisdiction missing or unknown"
	WarnLowConfidence      = "Translation confidence too low"
)
