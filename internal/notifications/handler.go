package notifications

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/util"
)

// Handler exposes notification endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches notification routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.list)
	rg.POST("/notifications/read-all", h.markAllRead)
	rg.POST("/notifications/:id/read", h.markRead)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := util.ParsePage(c.Query("limit"), c.Query("offset"), 20, 100)
	f := ListFilter{UnreadOnly: c.Query("unread") == "true", Limit: limit, Offset: offset}

	items, err := h.Svc.List(c.Request.Context(), userID, f)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list notifications", nil)
		return
	}
	unread, err := h.Svc.CountUnread(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to count notifications", nil)
		return
	}
	if items == nil {
		items = []Notification{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": items, "unread": unread, "limit": limit, "offset": offset})
}

func (h *Handler) markRead(c *gin.Context) {
	err := h.Svc.MarkRead(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "notification not found", nil)
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update notification", nil)
	default:
		c.Status(http.StatusNoContent)
	}
}

func (h *Handler) markAllRead(c *gin.Context) {
	n, err := h.Svc.MarkAllRead(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update notifications", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"updated": n})
}
