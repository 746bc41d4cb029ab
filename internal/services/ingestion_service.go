package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/lexgraph-backend/internal/data/repos"
	types "github.com/yungbote/lexgraph-backend/internal/domain"
	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/ingestion/extractor"
	"github.com/yungbote/lexgraph-backend/internal/ingestion/pipeline"
	"github.com/yungbote/lexgraph-backend/internal/jurisdiction"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type IngestRequest struct {
	Raw     pipeline.RawDocument     `json:"raw_document"`
	Source  *pipeline.SourceMetadata `json:"source_metadata,omitempty"`
	Options pipeline.Options         `json:"-"`
	Store   bool                     `json:"store"`
}

// IngestResponse always carries the pipeline result. Stored and Propagation
// are set only when the document was written to the graph.
type IngestResponse struct {
	pipeline.Result
	Stored      *DocumentRef       `json:"stored,omitempty"`
	Propagation *PropagationReport `json:"propagation,omitempty"`
}

type IngestionService interface {
	Ingest(ctx context.Context, req IngestRequest) IngestResponse
	IngestAndStore(ctx context.Context, req IngestRequest) (IngestResponse, error)
}

type ingestionService struct {
	log        *logger.Logger
	pipeline   *pipeline.Pipeline
	repos      repos.Set
	graph      GraphService
	propagator Propagator
}

func NewIngestionService(baseLog *logger.Logger, p *pipeline.Pipeline, set repos.Set, graph GraphService, propagator Propagator) IngestionService {
	return &ingestionService{
		log:        baseLog.With("service", "IngestionService"),
		pipeline:   p,
		repos:      set,
		graph:      graph,
		propagator: propagator,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, req IngestRequest) IngestResponse {
	return IngestResponse{Result: s.pipeline.Ingest(ctx, req.Raw, req.Source, req.Options)}
}

// IngestAndStore runs the pipeline and, on success, writes the document
// through the graph service. Subnational documents also trigger local-act
// propagation.
func (s *ingestionService) IngestAndStore(ctx context.Context, req IngestRequest) (IngestResponse, error) {
	resp := s.Ingest(ctx, req)
	if !resp.Success || resp.Output == nil {
		return resp, nil
	}
	out := resp.Output

	j, err := s.repos.Jurisdiction.GetByCode(dbctx.Context{Ctx: ctx}, out.Jurisdiction)
	if err != nil {
		return resp, err
	}
	if j == nil {
		return resp, domain.NewValidationError(fmt.Sprintf("jurisdiction %q is not registered", out.Jurisdiction))
	}
	module, err := ingestModule(out.Metadata, j.Code)
	if err != nil {
		return resp, err
	}

	level := types.Layer(out.LegalLevel)
	if !level.Valid() {
		level = j.Layer
	}
	in := LegalDocumentInput{
		Title:            out.Title,
		DocumentType:     domain.ParseDocumentType(out.DocumentType),
		JurisdictionID:   j.ID,
		LegalLevel:       level,
		Authority:        out.Authority,
		SourceURL:        out.SourceURL,
		DateAdopted:      parseDay(out.Metadata.DateAdopted),
		DateEffective:    parseDay(out.Metadata.DateEffective),
		DateEffectiveTo:  parseDay(out.Metadata.DateEffectiveTo),
		OriginalLanguage: out.OriginalLanguage,
		OriginalText:     out.OriginalText,
		NormalizedText:   out.NormalizedText,
		Celex:            out.Metadata.DocumentIdentifiers[extractor.IdentifierCelex],
		Rada:             out.Metadata.DocumentIdentifiers[extractor.IdentifierRada],
		UNSymbol:         out.Metadata.DocumentIdentifiers[extractor.IdentifierUNSymbol],
		CFR:              out.Metadata.DocumentIdentifiers[extractor.IdentifierCFR],
		ExternalID:       out.DocumentID,
		Metadata: map[string]any{
			"language_code":          out.Metadata.LanguageCode,
			"translation_confidence": out.Metadata.TranslationConfidence,
			"sentence_alignment":     out.SentenceAlignment,
		},
	}
	if in.Title == "" {
		in.Title = "Untitled " + string(in.DocumentType)
	}

	ref, err := s.graph.AddLegalDocument(ctx, in, module)
	if err != nil {
		return resp, err
	}
	resp.Stored = &ref
	s.log.Info("ingested document stored", "document_id", ref.DocumentID, "jurisdiction", j.Code, "module", module)

	if level == domain.LayerSubnational && s.propagator != nil {
		report := s.propagator.PropagateLocalAct(ctx, ref.DocumentID)
		resp.Propagation = &report
	}
	return resp, nil
}

func ingestModule(meta pipeline.ExtractedMetadata, code string) (types.Module, error) {
	if m := types.Module(strings.ToUpper(strings.TrimSpace(meta.Module))); m.Valid() {
		return m, nil
	}
	if m, ok := jurisdiction.ModuleForCode(code); ok {
		return m, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("no legal module for jurisdiction %q", code))
}

func parseDay(raw *string) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil
	}
	return &t
}
