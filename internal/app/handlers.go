package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/lexgraph-backend/internal/http/handlers"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
	"github.com/yungbote/lexgraph-backend/internal/realtime/bus"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Ingestion *httpH.IngestionHandler
	Graph     *httpH.GraphHandler
	Template  *httpH.TemplateHandler
	Query     *httpH.QueryHandler
	Legal     *httpH.LegalHandler
	Events    *httpH.EventsHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, s Services, events bus.Bus) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health:    httpH.NewHealthHandler(db),
		Ingestion: httpH.NewIngestionHandler(s.Ingestion),
		Graph:     httpH.NewGraphHandler(s.Graph, s.Propagator),
		Template:  httpH.NewTemplateHandler(s.Templates),
		Query:     httpH.NewQueryHandler(s.Query),
		Legal:     httpH.NewLegalHandler(s.Jurisdictions, s.Selector, s.Classifier, s.Research),
	}
	if events != nil {
		h.Events = httpH.NewEventsHandler(log, events)
	}
	return h
}
