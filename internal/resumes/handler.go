package resumes

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

const maxImportBytes = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches résumé routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
	rg.POST("/resumes", h.create)
	rg.GET("/resumes/templates", h.templates)
	rg.POST("/resumes/import", h.importResume)
	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.delete)
	rg.POST("/resumes/:id/duplicate", h.duplicate)
	rg.POST("/resumes/:id/default", h.setDefault)
	rg.GET("/resumes/:id/export", h.export)
}

func (h *Handler) templates(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{"templates": Templates, "default": DefaultTemplate})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}
	out := make([]ResumeSummary, 0, len(items))
	for _, r := range items {
		out = append(out, toSummary(r))
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": out, "limit": limit, "offset": offset})
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	res, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), CreateInput{
		Title:    req.Title,
		Template: req.Template,
		Data:     req.Data,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("resumeId", res.ID)
	respond.JSON(c, http.StatusCreated, toResponse(res))
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)
	res, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(res))
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	guard := req.ExpectedUpdatedAt
	if guard == nil {
		if raw := c.GetHeader("If-Unmodified-Since"); raw != "" {
			t, err := http.ParseTime(raw)
			if err != nil {
				respond.Error(c, http.StatusBadRequest, "validation_error", "invalid If-Unmodified-Since header", nil)
				return
			}
			// HTTP dates have second resolution.
			t = t.Add(time.Second - time.Microsecond)
			guard = &t
		}
	}

	res, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), id, UpdateInput{
		Title:    req.Title,
		Template: req.Template,
		Data:     req.Data,
	}, guard)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(res))
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) duplicate(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)
	res, err := h.Svc.Duplicate(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(res))
}

func (h *Handler) setDefault(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)
	res, err := h.Svc.SetDefault(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(res))
}

func (h *Handler) export(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)
	doc, err := h.Svc.Export(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="resume-`+id+`.json"`)
	respond.JSON(c, http.StatusOK, doc)
}

func (h *Handler) importResume(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))
	if err != nil {
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "import document too large", nil)
		return
	}
	res, err := h.Svc.Import(c.Request.Context(), middleware.UserIDFromContext(c), raw)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "import document does not match schema", verr.Errors)
			return
		}
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(res))
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process resume", nil)
	}
}
