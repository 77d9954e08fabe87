package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/credits"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

// CreditLedger charges signed-in callers of the API alias.
type CreditLedger interface {
	Consume(ctx context.Context, userID string, n int, reason string) (credits.Balance, error)
	Grant(ctx context.Context, userID string, n int, reason string) (credits.Balance, error)
}

// Handler serves the assistant function contract.
type Handler struct {
	Svc *Service
	// Credits, when set, charges one credit per call on the API alias.
	// The hosted-function path is never charged.
	Credits CreditLedger
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the API alias of the assistant function.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/assist", h.assistCharged)
}

// RegisterFunctionRoutes attaches the hosted-function path.
func (h *Handler) RegisterFunctionRoutes(rg *gin.RouterGroup) {
	rg.POST("/gemini-ai-assistant", h.assist)
}

type assistRequest struct {
	Prompt  string          `json:"prompt" binding:"required,max=20000"`
	Type    string          `json:"type" binding:"max=64"`
	Context json.RawMessage `json:"context"`
}

func (h *Handler) assist(c *gin.Context) { h.serve(c, false) }

func (h *Handler) assistCharged(c *gin.Context) { h.serve(c, h.Credits != nil) }

func (h *Handler) serve(c *gin.Context, charge bool) {
	var body assistRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		invalid(c, "invalid request body")
		return
	}

	t := ParseRequestType(body.Type)
	c.Set("aiType", string(t))

	body.Prompt = strings.TrimSpace(body.Prompt)
	if body.Prompt == "" {
		invalid(c, ErrInvalidRequest.Error())
		return
	}

	var pc PromptContext
	if raw := bytes.TrimSpace(body.Context); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if err := json.Unmarshal(raw, &pc); err != nil {
			invalid(c, "context must be an object")
			return
		}
	}

	ctx := c.Request.Context()
	userID := middleware.UserIDFromContext(c)
	reason := "ai:" + string(t)
	if charge {
		if _, err := h.Credits.Consume(ctx, userID, 1, reason); err != nil {
			if errors.Is(err, credits.ErrInsufficientCredits) {
				credits.WriteInsufficient(c)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to charge credits", nil)
			return
		}
	}

	env, err := h.Svc.Assist(ctx, Request{Prompt: body.Prompt, Type: t, Context: pc})
	if err != nil {
		if charge {
			h.refund(ctx, userID, string(t))
		}
		if errors.Is(err, ErrInvalidRequest) {
			invalid(c, err.Error())
			return
		}
		kind := Classify(err)
		if env.Metadata != nil {
			kind = env.Metadata.ErrorType
		}
		respond.JSON(c, HTTPStatus(kind), env)
		return
	}
	respond.JSON(c, http.StatusOK, env)
}

func (h *Handler) refund(ctx context.Context, userID, feature string) {
	if _, err := h.Credits.Grant(context.WithoutCancel(ctx), userID, 1, "refund:ai:"+feature); err != nil {
		telemetry.Error("ai.refund.failed", map[string]any{
			"user_id": userID,
			"type":    feature,
			"error":   err.Error(),
		})
	}
}

func invalid(c *gin.Context, msg string) {
	env := ErrorEnvelope(KindGeneric, "", TypeGeneral, time.Now())
	env.Error = msg
	respond.JSON(c, http.StatusBadRequest, env)
}
