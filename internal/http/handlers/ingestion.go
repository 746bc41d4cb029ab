package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lexgraph-backend/internal/http/response"
	"github.com/yungbote/lexgraph-backend/internal/ingestion/pipeline"
	"github.com/yungbote/lexgraph-backend/internal/services"
)

type IngestionHandler struct {
	ingestion services.IngestionService
}

func NewIngestionHandler(ingestion services.IngestionService) *IngestionHandler {
	return &IngestionHandler{ingestion: ingestion}
}

type ingestRequest struct {
	RawDocument    pipeline.RawDocument     `json:"raw_document"`
	SourceMetadata *pipeline.SourceMetadata `json:"source_metadata,omitempty"`
	GenerateID     *bool                    `json:"generate_id,omitempty"`
	Store          bool                     `json:"store"`
}

// POST /api/ingestion
// body: { "raw_document": {...}, "source_metadata": {...}, "generate_id": true, "store": false }
// A pipeline rejection is 422 with the full result so callers see every error.
func (h *IngestionHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.RawDocument.Content) == "" {
		c.JSON(http.StatusBadRequest, pipeline.Result{
			Errors:   []string{"Missing raw_document.content"},
			Warnings: []string{},
		})
		return
	}

	opts := pipeline.DefaultOptions()
	if req.GenerateID != nil {
		opts.GenerateID = *req.GenerateID
	}
	in := services.IngestRequest{Raw: req.RawDocument, Source: req.SourceMetadata, Options: opts, Store: req.Store}

	var resp services.IngestResponse
	if req.Store {
		var err error
		resp, err = h.ingestion.IngestAndStore(c.Request.Context(), in)
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
	} else {
		resp = h.ingestion.Ingest(c.Request.Context(), in)
	}

	if !resp.Success {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	if resp.Stored != nil {
		response.RespondCreated(c, resp)
		return
	}
	response.RespondOK(c, resp)
}
