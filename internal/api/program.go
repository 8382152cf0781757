package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stwalsh4118/asrun/internal/catalog"
	"github.com/stwalsh4118/asrun/internal/logger"
	"github.com/stwalsh4118/asrun/internal/models"
)

const requestTimeout = 5 * time.Second

// CreateProgramRequest represents a request to add a program to the catalog
type CreateProgramRequest struct {
	Name    string `json:"name" binding:"required"`
	Keyword string `json:"keyword" binding:"required"`
	Year    int    `json:"year"`
}

// ProgramListResponse represents the catalog
type ProgramListResponse struct {
	Programs []*models.Program `json:"programs"`
}

// DayListResponse represents a program's days
type DayListResponse struct {
	Days []*models.Day `json:"days"`
}

// BroadcastListResponse represents a list of broadcasts
type BroadcastListResponse struct {
	Broadcasts []*models.Broadcast `json:"broadcasts"`
}

// ProgramHandler handles catalog API requests
type ProgramHandler struct {
	catalog *catalog.Service
}

// NewProgramHandler creates a new program handler instance
func NewProgramHandler(catalogService *catalog.Service) *ProgramHandler {
	return &ProgramHandler{catalog: catalogService}
}

// CreateProgram handles POST /api/programs
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	program, err := h.catalog.CreateProgram(ctx, req.Name, req.Keyword, req.Year)
	if err != nil {
		switch {
		case catalog.IsDuplicateName(err):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "duplicate_name",
				Message: "A program with this name already exists",
			})
		case catalog.IsValidation(err):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_program",
				Message: err.Error(),
			})
		default:
			logger.Log.Error().Err(err).Str("name", req.Name).Msg("Failed to create program")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "create_failed",
				Message: "Failed to create program",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, program)
}

// ListPrograms handles GET /api/programs
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	programs, err := h.catalog.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve program list",
		})
		return
	}

	if programs == nil {
		programs = []*models.Program{}
	}
	c.JSON(http.StatusOK, ProgramListResponse{Programs: programs})
}

// GetProgram handles GET /api/programs/:id
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	program, err := h.catalog.GetByID(ctx, id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, program)
}

// DeleteProgram handles DELETE /api/programs/:id
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.catalog.DeleteProgram(ctx, id); err != nil {
		h.respondLookupError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListDays handles GET /api/programs/:id/days
func (h *ProgramHandler) ListDays(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	days, err := h.catalog.Days(ctx, id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	if days == nil {
		days = []*models.Day{}
	}
	c.JSON(http.StatusOK, DayListResponse{Days: days})
}

// ListDayBroadcasts handles GET /api/days/:id/broadcasts
func (h *ProgramHandler) ListDayBroadcasts(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	broadcasts, err := h.catalog.DayBroadcasts(ctx, id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	if broadcasts == nil {
		broadcasts = []*models.Broadcast{}
	}
	c.JSON(http.StatusOK, BroadcastListResponse{Broadcasts: broadcasts})
}

func (h *ProgramHandler) respondLookupError(c *gin.Context, err error) {
	switch {
	case catalog.IsProgramNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Program not found",
		})
	case catalog.IsDayNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Day not found",
		})
	default:
		logger.Log.Error().Err(err).Str("path", c.FullPath()).Msg("Catalog query failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to query catalog",
		})
	}
}

// parseIDParam parses a UUID path parameter, writing a 400 on failure
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid " + name + " format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// SetupProgramRoutes registers catalog routes
func SetupProgramRoutes(apiGroup *gin.RouterGroup, catalogService *catalog.Service) {
	handler := NewProgramHandler(catalogService)

	apiGroup.POST("/programs", handler.CreateProgram)
	apiGroup.GET("/programs", handler.ListPrograms)
	apiGroup.GET("/programs/:id", handler.GetProgram)
	apiGroup.DELETE("/programs/:id", handler.DeleteProgram)
	apiGroup.GET("/programs/:id/days", handler.ListDays)
	apiGroup.GET("/days/:id/broadcasts", handler.ListDayBroadcasts)
}
