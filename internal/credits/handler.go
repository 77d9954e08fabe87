package credits

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/util"
)

// Handler exposes credit endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches credit routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/credits", h.getBalance)
	rg.GET("/credits/transactions", h.listTransactions)
}

// RegisterDevRoutes attaches dev-only credit routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/credits/grant", h.grant)
}

func (h *Handler) getBalance(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to fetch credits")
		return
	}
	respond.JSON(c, http.StatusOK, b)
}

func (h *Handler) listTransactions(c *gin.Context) {
	limit, offset := util.ParsePage(c.Query("limit"), c.Query("offset"), 20, 100)
	items, err := h.Svc.Transactions(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		writeError(c, err, "failed to list transactions")
		return
	}
	if items == nil {
		items = []Transaction{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

type grantRequest struct {
	Amount int    `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason"`
}

func (h *Handler) grant(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "amount must be positive", nil)
		return
	}
	if req.Reason == "" {
		req.Reason = "grant"
	}
	b, err := h.Svc.Grant(c.Request.Context(), middleware.UserIDFromContext(c), req.Amount, req.Reason)
	if err != nil {
		writeError(c, err, "failed to grant credits")
		return
	}
	respond.JSON(c, http.StatusOK, b)
}

// WriteInsufficient renders the 402 body used wherever a credit is required.
func WriteInsufficient(c *gin.Context) {
	respond.Error(c, http.StatusPaymentRequired, "insufficient_credits", "You have no AI credits left.", nil)
}

func writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrInsufficientCredits):
		WriteInsufficient(c)
	case errors.Is(err, ErrInvalidAmount):
		respond.Error(c, http.StatusBadRequest, "bad_request", err.Error(), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}
