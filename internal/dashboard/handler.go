package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.overview)
}

func (h *Handler) overview(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	out, err := h.Svc.Overview(c.Request.Context(), userID)
	if err != nil {
		telemetry.Error("dashboard.overview.failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load dashboard", nil)
		return
	}
	respond.JSON(c, http.StatusOK, out)
}
