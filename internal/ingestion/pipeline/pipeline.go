// Package pipeline turns a raw legal document into a graph-ready payload.
// It never writes to storage.
package pipeline

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/lexgraph-backend/internal/ingestion/extractor"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/envutil"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

const defaultVersion = 1

type Config struct {
	MinContentLength         int
	MinTranslationConfidence float64
}

func DefaultConfig() Config {
	return Config{MinContentLength: 10, MinTranslationConfidence: 0.2}
}

// ConfigFromEnv reads INGEST_MIN_CONTENT_LENGTH and
// INGEST_MIN_TRANSLATION_CONFIDENCE.
func ConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		MinContentLength:         envutil.Int("INGEST_MIN_CONTENT_LENGTH", def.MinContentLength),
		MinTranslationConfidence: envutil.Float("INGEST_MIN_TRANSLATION_CONFIDENCE", def.MinTranslationConfidence),
	}
}

type Pipeline struct {
	log        *logger.Logger
	cfg        Config
	detector   *extractor.LanguageDetector
	translator Translator
	metrics    *observability.Metrics
}

// New wires a pipeline. A nil translator selects StubTranslator; metrics may
// be nil.
func New(baseLog *logger.Logger, cfg Config, detector *extractor.LanguageDetector, translator Translator, metrics *observability.Metrics) *Pipeline {
	if translator == nil {
		translator = StubTranslator{}
	}
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = DefaultConfig().MinContentLength
	}
	return &Pipeline{
		log:        baseLog.With("component", "IngestionPipeline"),
		cfg:        cfg,
		detector:   detector,
		translator: translator,
		metrics:    metrics,
	}
}

// NewDefault loads the embedded language tables.
func NewDefault(baseLog *logger.Logger, metrics *observability.Metrics) (*Pipeline, error) {
	det, err := extractor.DefaultLanguageDetector()
	if err != nil {
		return nil, err
	}
	return New(baseLog, ConfigFromEnv(), det, nil, metrics), nil
}

// Ingest validates, normalizes, detects language, translates, extracts
// metadata and aligns sentences, in that order.
func (p *Pipeline) Ingest(ctx context.Context, raw RawDocument, source *SourceMetadata, opts Options) Result {
	started := time.Now()
	ctx, span := observability.StartSpan(ctx, "ingestion.ingest")
	res := p.ingest(ctx, raw, source, opts)
	lang := ""
	if res.Output != nil {
		lang = res.Output.OriginalLanguage
	}
	span.SetAttributes(
		attribute.Bool("ingest.success", res.Success),
		attribute.String("ingest.language", lang),
		attribute.Int("ingest.warnings", len(res.Warnings)),
	)
	span.End()
	p.metrics.ObserveIngest(res.Success, lang, len(res.Warnings), time.Since(started))
	if !res.Success {
		p.log.Info("ingest rejected", "document_id", res.DocumentID, "errors", res.Errors)
	}
	return res
}

func (p *Pipeline) ingest(ctx context.Context, raw RawDocument, source *SourceMetadata, opts Options) Result {
	errs := []string{}
	warnings := []string{}

	if msg := p.validateContent(raw.Content); msg != "" {
		return Result{Success: false, Errors: []string{msg}, Warnings: warnings}
	}

	docID := uuid.NewString()
	if !opts.GenerateID {
		if ext := strings.TrimSpace(raw.ExternalID); ext != "" {
			docID = ext
		}
	}

	normalized := extractor.NormalizeText(raw.Content)
	title := extractor.NormalizeTitle(raw.Title)
	originalText := strings.TrimSpace(raw.Content)

	detected := p.detect(originalText)
	sourceLanguage := strings.ToLower(strings.TrimSpace(raw.SourceLanguage))
	if sourceLanguage == "" {
		sourceLanguage = "en"
		if p.detector != nil && p.detector.IsSupported(detected.Language) {
			sourceLanguage = detected.Language
		}
	}

	tr, err := p.translator.Translate(ctx, normalized, sourceLanguage)
	if err != nil {
		p.log.Warn("translation failed; passing text through", "error", err, "language", sourceLanguage)
		warnings = append(warnings, "Translation failed: "+err.Error())
		tr = Translation{NormalizedEnglish: normalized, Confidence: 0}
	}
	if tr.Confidence < p.cfg.MinTranslationConfidence {
		warnings = append(warnings, WarnLowConfidence)
	}

	meta := extractor.ExtractMetadata(raw, source, tr.Confidence, sourceLanguage)
	if j := strings.TrimSpace(meta.Jurisdiction); j == "" || strings.EqualFold(j, extractor.JurisdictionUnknown) {
		errs = append(errs, ErrJurisdictionUnknown)
	}

	var alignment []SentenceAlignment
	if len(tr.Alignments) > 0 {
		alignment = extractor.MergeAlignments(nil, tr.Alignments)
	} else {
		alignment = extractor.BuildOneToOneAlignment(originalText, tr.NormalizedEnglish)
	}

	if len(errs) > 0 {
		return Result{Success: false, DocumentID: docID, Errors: errs, Warnings: warnings}
	}

	authority, sourceURL := "", ""
	if meta.Authority != nil {
		authority = *meta.Authority
	}
	if meta.SourceURL != nil {
		sourceURL = *meta.SourceURL
	}
	return Result{
		Success:    true,
		DocumentID: docID,
		Errors:     errs,
		Warnings:   warnings,
		Output: &Output{
			DocumentID:        docID,
			Title:             title,
			Jurisdiction:      meta.Jurisdiction,
			LegalLevel:        meta.LegalLevel,
			DocumentType:      meta.DocumentType,
			Authority:         authority,
			OriginalLanguage:  sourceLanguage,
			OriginalText:      originalText,
			NormalizedText:    tr.NormalizedEnglish,
			SentenceAlignment: alignment,
			Metadata:          meta,
			VersionNumber:     defaultVersion,
			SourceURL:         sourceURL,
		},
	}
}

func (p *Pipeline) validateContent(content string) string {
	if content == "" {
		return ErrMissingContent
	}
	if utf8.RuneCountInString(strings.TrimSpace(content)) < p.cfg.MinContentLength {
		return ErrContentTooShort
	}
	return ""
}

func (p *Pipeline) detect(text string) extractor.Detection {
	if p.detector == nil {
		return extractor.Detection{Language: extractor.LanguageUnknown}
	}
	return p.detector.Detect(text)
}
