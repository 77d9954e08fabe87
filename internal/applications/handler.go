package applications

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/util"
)

// Handler exposes job application endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/applications", h.list)
	rg.POST("/applications", h.create)
	rg.GET("/applications/stats", h.stats)
	rg.GET("/applications/:id", h.get)
	rg.PUT("/applications/:id", h.update)
	rg.PATCH("/applications/:id/status", h.setStatus)
	rg.DELETE("/applications/:id", h.delete)
}

type applicationRequest struct {
	Company   string `json:"company" binding:"required,max=200"`
	Position  string `json:"position" binding:"required,max=200"`
	Status    string `json:"status" binding:"omitempty,oneof=applied interviewing offer rejected withdrawn"`
	JobURL    string `json:"jobUrl" binding:"omitempty,url,max=2000"`
	Notes     string `json:"notes" binding:"max=10000"`
	ResumeID  string `json:"resumeId" binding:"omitempty,uuid"`
	AppliedAt string `json:"appliedAt"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=applied interviewing offer rejected withdrawn"`
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := util.ParsePage(c.Query("limit"), c.Query("offset"), 50, 100)
	status := Status(strings.TrimSpace(c.Query("status")))
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), ListFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []Application{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) stats(c *gin.Context) {
	counts, err := h.Svc.CountByStatus(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	respond.JSON(c, http.StatusOK, gin.H{"byStatus": counts, "total": total})
}

func (h *Handler) create(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	a, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, a)
}

func (h *Handler) get(c *gin.Context) {
	a, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, a)
}

func (h *Handler) update(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, a)
}

func (h *Handler) setStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "status must be one of applied, interviewing, offer, rejected, withdrawn", nil)
		return
	}
	a, err := h.Svc.SetStatus(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), Status(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, a)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindInput(c *gin.Context) (Input, bool) {
	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", err.Error())
		return Input{}, false
	}
	in := Input{
		Company:  req.Company,
		Position: req.Position,
		Status:   Status(req.Status),
		JobURL:   req.JobURL,
		Notes:    req.Notes,
		ResumeID: req.ResumeID,
	}
	if raw := strings.TrimSpace(req.AppliedAt); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			if t, err = time.Parse(time.DateOnly, raw); err != nil {
				respond.Error(c, http.StatusBadRequest, "validation_error", "appliedAt must be RFC3339 or YYYY-MM-DD", nil)
				return Input{}, false
			}
		}
		in.AppliedAt = t
	}
	return in, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "application request failed", nil)
	}
}
