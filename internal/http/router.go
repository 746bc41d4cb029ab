package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/lexgraph-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lexgraph-backend/internal/http/middleware"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

const otelServiceName = "lexgraph-api"

type RouterConfig struct {
	Log          *logger.Logger
	Metrics      *observability.Metrics
	AllowOrigins []string

	HealthHandler    *httpH.HealthHandler
	IngestionHandler *httpH.IngestionHandler
	GraphHandler     *httpH.GraphHandler
	TemplateHandler  *httpH.TemplateHandler
	QueryHandler     *httpH.QueryHandler
	LegalHandler     *httpH.LegalHandler
	EventsHandler    *httpH.EventsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(otelServiceName))
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	api := r.Group("/api")
	{
		if cfg.IngestionHandler != nil {
			api.POST("/ingestion", cfg.IngestionHandler.Ingest)
		}

		graph := api.Group("/graph")
		if cfg.GraphHandler != nil {
			graph.POST("/documents", cfg.GraphHandler.AddDocument)
			graph.POST("/documents/:id/version", cfg.GraphHandler.UpdateDocumentVersion)
			graph.POST("/documents/:id/propagate", cfg.GraphHandler.PropagateSupranational)
			graph.POST("/obligations", cfg.GraphHandler.AddObligation)
			graph.POST("/relationships", cfg.GraphHandler.AddRelationship)
		}
		if cfg.EventsHandler != nil {
			graph.GET("/events", cfg.EventsHandler.Stream)
		}
		if cfg.TemplateHandler != nil {
			graph.POST("/templates", cfg.TemplateHandler.CreateTemplate)
			graph.GET("/templates/:id", cfg.TemplateHandler.GetTemplate)
			graph.GET("/templates/:id/sections", cfg.TemplateHandler.GetSections)
			graph.POST("/templates/:id/sections", cfg.TemplateHandler.AddSection)
			graph.POST("/templates/:id/links", cfg.TemplateHandler.LinkTemplate)
			graph.POST("/templates/:id/version", cfg.TemplateHandler.CreateVersion)
			graph.GET("/templates/:id/versions", cfg.TemplateHandler.ListVersions)
			graph.PUT("/overlays", cfg.TemplateHandler.UpsertOverlay)
			graph.PATCH("/overlays/:id", cfg.TemplateHandler.UpdateOverlay)
			graph.GET("/sections/:id/overlays", cfg.TemplateHandler.GetOverlays)
		}

		// Read-only queries
		if cfg.QueryHandler != nil {
			query := graph.Group("/query")
			query.GET("/documents/:id", cfg.QueryHandler.GetDocument)
			query.GET("/obligations", cfg.QueryHandler.GetObligations)
			query.GET("/obligations/:id/trace", cfg.QueryHandler.TraceObligation)
			query.GET("/search", cfg.QueryHandler.SearchDocuments)
			query.GET("/unified-search", cfg.QueryHandler.Search)
			query.GET("/conflicts", cfg.QueryHandler.DetectConflicts)
			query.GET("/templates/scenario/:tag", cfg.QueryHandler.TemplatesForScenario)
			query.GET("/templates/ranked", cfg.QueryHandler.RankTemplatesForRole)
			query.GET("/overlays", cfg.QueryHandler.OverlaysForJurisdiction)
			query.GET("/scenario-guidance", cfg.QueryHandler.ScenarioGuidance)
			query.GET("/recommendations", cfg.QueryHandler.Recommendations)

			api.GET("/legal/graph", cfg.QueryHandler.GraphSnapshot)
		}

		if cfg.LegalHandler != nil {
			legal := api.Group("/legal")
			legal.GET("/jurisdictions", cfg.LegalHandler.ListJurisdictions)
			legal.POST("/jurisdictions", cfg.LegalHandler.CreateJurisdiction)
			legal.POST("/jurisdiction-detect", cfg.LegalHandler.Detect)
			legal.POST("/jurisdiction-selector", cfg.LegalHandler.ResolveSelector)
			legal.POST("/jurisdiction-selector/confirm", cfg.LegalHandler.ConfirmSelector)
			legal.POST("/research", cfg.LegalHandler.Research)

			api.GET("/roles/jurisdiction-defaults", cfg.LegalHandler.RoleDefaults)
		}
	}

	return r
}
