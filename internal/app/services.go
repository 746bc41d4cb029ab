package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/data/repos"
	"github.com/yungbote/lexgraph-backend/internal/ingestion/extractor"
	"github.com/yungbote/lexgraph-backend/internal/ingestion/pipeline"
	"github.com/yungbote/lexgraph-backend/internal/jurisdiction"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
	"github.com/yungbote/lexgraph-backend/internal/services"
)

type Services struct {
	Effects       *services.SideEffects
	Propagator    services.Propagator
	Graph         services.GraphService
	Templates     services.TemplateService
	Query         services.QueryService
	Jurisdictions services.JurisdictionService
	Research      services.ResearchService
	Ingestion     services.IngestionService

	Pipeline   *pipeline.Pipeline
	Classifier *jurisdiction.Classifier
	Selector   *jurisdiction.Selector
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, set repos.Set, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	retries := cfg.VersionBumpMaxRetries
	effects := services.NewSideEffects(log, clients.Mirror, clients.Events, metrics)
	propagator := services.NewPropagator(db, log, set, effects, metrics, retries)
	graphSvc := services.NewGraphService(db, log, set, propagator, effects, metrics, retries)
	templates := services.NewTemplateService(db, log, set, effects, metrics, retries)
	query := services.NewQueryService(db, log, set)
	jurisdictions := services.NewJurisdictionService(db, log, set)
	research := services.NewResearchService(log, set, query)

	detector, err := extractor.DefaultLanguageDetector()
	if err != nil {
		return Services{}, fmt.Errorf("load language tables: %w", err)
	}
	p := pipeline.New(log, cfg.Ingest, detector, nil, metrics)
	ingestion := services.NewIngestionService(log, p, set, graphSvc, propagator)

	tables, err := jurisdiction.DefaultSignalTables()
	if err != nil {
		return Services{}, fmt.Errorf("load jurisdiction signal tables: %w", err)
	}
	classifier := jurisdiction.NewClassifier(tables)
	selector := jurisdiction.NewSelector(log, classifier, jurisdictions.Lookup(), cfg.JurisdictionMinScore, metrics)

	return Services{
		Effects:       effects,
		Propagator:    propagator,
		Graph:         graphSvc,
		Templates:     templates,
		Query:         query,
		Jurisdictions: jurisdictions,
		Research:      research,
		Ingestion:     ingestion,
		Pipeline:      p,
		Classifier:    classifier,
		Selector:      selector,
	}, nil
}
