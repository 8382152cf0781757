package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stwalsh4118/asrun/internal/asrun"
	"github.com/stwalsh4118/asrun/internal/catalog"
	"github.com/stwalsh4118/asrun/internal/ingest"
	"github.com/stwalsh4118/asrun/internal/logger"
	"github.com/stwalsh4118/asrun/internal/storage"
)

// ingestTimeout bounds synchronous ingest and billboard requests
const ingestTimeout = 2 * time.Minute

// IngestRequest represents a batch of files to ingest
type IngestRequest struct {
	Files []ingest.FileRef `json:"files" binding:"required,min=1,dive"`
}

// BillboardRequest selects a file and the program whose billboards are wanted.
// Either ProgramID or Keyword must be set.
type BillboardRequest struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key" binding:"required"`
	ProgramID string `json:"program_id"`
	Keyword   string `json:"keyword"`
}

// BillboardResponse is one billboard entry
type BillboardResponse struct {
	LineNumber  int    `json:"line_number"`
	Channel     string `json:"channel"`
	Time        string `json:"time,omitempty"`
	MaterialKey string `json:"material_key"`
	Title       string `json:"title"`
	Kind        string `json:"kind"`
}

// BillboardListResponse represents a file's billboards for one program
type BillboardListResponse struct {
	Keyword    string               `json:"keyword"`
	Billboards []*BillboardResponse `json:"billboards"`
}

// IngestHandler handles ingestion and broadcast lookup requests
type IngestHandler struct {
	ingest  *ingest.Service
	catalog *catalog.Service
}

// NewIngestHandler creates a new ingest handler instance
func NewIngestHandler(ingestService *ingest.Service, catalogService *catalog.Service) *IngestHandler {
	return &IngestHandler{ingest: ingestService, catalog: catalogService}
}

// Ingest handles POST /api/ingest
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ingestTimeout)
	defer cancel()

	summary, err := h.ingest.IngestBatch(ctx, req.Files)
	if err != nil {
		if ingest.IsEmptyBatch(err) || ingest.IsInvalidFileRef(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_batch",
				Message: err.Error(),
			})
			return
		}
		logger.Log.Error().Err(err).Msg("Batch ingestion failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "ingest_failed",
			Message: "Failed to ingest batch",
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// LookupBroadcast handles GET /api/broadcasts/lookup?program_id=&at=
func (h *IngestHandler) LookupBroadcast(c *gin.Context) {
	programID, err := uuid.Parse(c.Query("program_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid program_id format",
		})
		return
	}

	at, err := time.Parse(time.RFC3339, c.Query("at"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_time",
			Message: "at must be an RFC3339 timestamp",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	broadcast, err := h.ingest.FindBroadcastAt(ctx, programID, at)
	if err != nil {
		switch {
		case ingest.IsProgramNotFound(err):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Program not found",
			})
		case ingest.IsBroadcastNotFound(err):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "No broadcast of this program at the requested time",
			})
		default:
			logger.Log.Error().Err(err).Str("program_id", programID.String()).Msg("Broadcast lookup failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "query_failed",
				Message: "Failed to look up broadcast",
			})
		}
		return
	}

	c.JSON(http.StatusOK, broadcast)
}

// Billboards handles POST /api/billboards
func (h *IngestHandler) Billboards(c *gin.Context) {
	var req BillboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ingestTimeout)
	defer cancel()

	keyword := req.Keyword
	if req.ProgramID != "" {
		id, err := uuid.Parse(req.ProgramID)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_id",
				Message: "Invalid program_id format",
			})
			return
		}
		program, err := h.catalog.GetByID(ctx, id)
		if err != nil {
			if catalog.IsProgramNotFound(err) {
				c.JSON(http.StatusNotFound, ErrorResponse{
					Error:   "not_found",
					Message: "Program not found",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "query_failed",
				Message: "Failed to retrieve program",
			})
			return
		}
		keyword = program.Keyword
	}
	if keyword == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "program_id or keyword is required",
		})
		return
	}

	entries, err := h.ingest.Billboards(ctx, ingest.FileRef{Bucket: req.Bucket, Key: req.Key}, keyword)
	if err != nil {
		switch {
		case errors.Is(err, asrun.ErrInvalidFilename), ingest.IsInvalidFileRef(err):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_file",
				Message: err.Error(),
			})
		case storage.IsObjectNotFound(err):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Log file not found",
			})
		default:
			logger.Log.Error().Err(err).Str("key", req.Key).Msg("Billboard association failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "read_failed",
				Message: "Failed to read log file",
			})
		}
		return
	}

	response := BillboardListResponse{Keyword: keyword, Billboards: make([]*BillboardResponse, 0, len(entries))}
	for _, e := range entries {
		response.Billboards = append(response.Billboards, toBillboardResponse(e))
	}
	c.JSON(http.StatusOK, response)
}

func toBillboardResponse(e *asrun.LogEntry) *BillboardResponse {
	r := &BillboardResponse{
		LineNumber:  e.LineNumber,
		Channel:     e.MarketChannel,
		MaterialKey: e.MaterialKey,
		Title:       e.DatabaseTitle,
		Kind:        e.Billboard.String(),
	}
	if e.Time != nil {
		r.Time = e.Time.String()
	}
	return r
}

// SetupIngestRoutes registers ingestion, lookup and billboard routes
func SetupIngestRoutes(apiGroup *gin.RouterGroup, ingestService *ingest.Service, catalogService *catalog.Service) {
	handler := NewIngestHandler(ingestService, catalogService)

	apiGroup.POST("/ingest", handler.Ingest)
	apiGroup.GET("/broadcasts/lookup", handler.LookupBroadcast)
	apiGroup.POST("/billboards", handler.Billboards)
}
