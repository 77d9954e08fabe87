package assistant

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/ai"
	"resume-builder/internal/credits"
	"resume-builder/internal/extract"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

// CreditLedger charges one credit per AI call and refunds failed calls.
type CreditLedger interface {
	Consume(ctx context.Context, userID string, n int, reason string) (credits.Balance, error)
	Grant(ctx context.Context, userID string, n int, reason string) (credits.Balance, error)
}

// Handler exposes the typed assistant endpoints.
type Handler struct {
	Facade   *Facade
	Analyzer *CVAnalyzer
	Credits  CreditLedger
}

// NewHandler constructs a Handler. A nil ledger disables charging.
func NewHandler(f *Facade, analyzer *CVAnalyzer, ledger CreditLedger) *Handler {
	return &Handler{Facade: f, Analyzer: analyzer, Credits: ledger}
}

// RegisterRoutes attaches assistant routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/assistant")
	g.POST("/summary", h.summary)
	g.POST("/bullets", h.bullets)
	g.POST("/keywords", h.keywords)
	g.POST("/ats-score", h.atsScore)
	g.POST("/tailoring", h.tailoring)
	g.POST("/cover-letter", h.coverLetter)
	g.POST("/cv/extract", h.extractCV)
}

type summaryRequest struct {
	ResumeData resumes.ResumeData `json:"resumeData"`
	TargetRole string             `json:"targetRole" binding:"max=200"`
}

type bulletsRequest struct {
	Bullets []string `json:"bullets" binding:"required,min=1,max=20,dive,required,max=1000"`
	Role    string   `json:"role" binding:"max=200"`
}

type jobRequest struct {
	ResumeData     resumes.ResumeData `json:"resumeData"`
	JobDescription string             `json:"jobDescription" binding:"required,max=20000"`
	Company        string             `json:"company" binding:"max=200"`
}

type cvTextRequest struct {
	Text string `json:"text" binding:"required,max=100000"`
}

func (h *Handler) summary(c *gin.Context) {
	var req summaryRequest
	if !bind(c, &req) {
		return
	}
	h.run(c, "summary", func(ctx context.Context) (any, error) {
		s, err := h.Facade.GenerateSummary(ctx, req.ResumeData, req.TargetRole)
		return gin.H{"summary": s}, err
	})
}

func (h *Handler) bullets(c *gin.Context) {
	var req bulletsRequest
	if !bind(c, &req) {
		return
	}
	h.run(c, "bullets", func(ctx context.Context) (any, error) {
		b, err := h.Facade.ImproveBullets(ctx, req.Bullets, req.Role)
		return gin.H{"bullets": b}, err
	})
}

func (h *Handler) keywords(c *gin.Context) {
	var req jobRequest
	if !bind(c, &req) {
		return
	}
	h.run(c, "keywords", func(ctx context.Context) (any, error) {
		k, err := h.Facade.ExtractKeywords(ctx, req.JobDescription)
		return gin.H{"keywords": k}, err
	})
}

func (h *Handler) atsScore(c *gin.Context) {
	var req jobRequest
	if !bind(c, &req) {
		return
	}
	h.run(c, "ats_score", func(ctx context.Context) (any, error) {
		return h.Facade.ScoreATS(ctx, req.ResumeData, req.JobDescription)
	})
}

func (h *Handler) tailoring(c *gin.Context) {
	var req jobRequest
	if !bind(c, &req) {
		return
	}
	h.run(c, "job_tailoring", func(ctx context.Context) (any, error) {
		return h.Facade.AnalyzeJobTailoring(ctx, req.ResumeData, req.JobDescription)
	})
}

func (h *Handler) coverLetter(c *gin.Context) {
	var req jobRequest
	if !bind(c, &req) {
		return
	}
	h.run(c, "cover_letter", func(ctx context.Context) (any, error) {
		letter, err := h.Facade.GenerateCoverLetter(ctx, req.ResumeData, req.JobDescription, req.Company)
		return gin.H{"coverLetter": letter}, err
	})
}

// extractCV accepts a multipart "file" (PDF, DOCX or text) or JSON {text}.
func (h *Handler) extractCV(c *gin.Context) {
	text, ok := cvText(c)
	if !ok {
		return
	}
	h.run(c, "cv_extraction", func(ctx context.Context) (any, error) {
		res, err := h.Analyzer.Analyze(ctx, text)
		if err != nil {
			return nil, &attemptsError{err: err, attempts: res.Attempts}
		}
		return res, nil
	})
}

// attemptsError keeps the attempt history of a failed analysis for the response details.
type attemptsError struct {
	err      error
	attempts []AttemptStatus
}

func (e *attemptsError) Error() string { return e.err.Error() }
func (e *attemptsError) Unwrap() error { return e.err }

func cvText(c *gin.Context) (string, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req cvTextRequest
		if !bind(c, &req) {
			return "", false
		}
		return req.Text, true
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, extract.MaxBytes+(64<<10))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return "", false
	}
	if fileHeader.Size > extract.MaxBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", extract.ErrTooLarge.Error(), nil)
		return "", false
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, extract.MaxBytes))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return "", false
	}
	text, err := extract.ExtractTextFromBytes(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	switch {
	case errors.Is(err, extract.ErrUnsupported):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "upload a PDF, DOCX or text file", nil)
		return "", false
	case errors.Is(err, extract.ErrEmpty):
		respond.Error(c, http.StatusUnprocessableEntity, "empty_document", err.Error(), nil)
		return "", false
	case err != nil:
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "could not read text from the document", nil)
		return "", false
	}
	return text, true
}

// run charges a credit, executes fn and refunds the credit when fn fails.
func (h *Handler) run(c *gin.Context, feature string, fn func(ctx context.Context) (any, error)) {
	ctx := c.Request.Context()
	userID := middleware.UserIDFromContext(c)
	c.Set("aiType", feature)

	if h.Credits != nil {
		if _, err := h.Credits.Consume(ctx, userID, 1, "ai:"+feature); err != nil {
			if errors.Is(err, credits.ErrInsufficientCredits) {
				credits.WriteInsufficient(c)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to charge credits", nil)
			return
		}
	}

	out, err := fn(ctx)
	if err != nil {
		h.refund(ctx, userID, feature)
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) refund(ctx context.Context, userID, feature string) {
	if h.Credits == nil {
		return
	}
	if _, err := h.Credits.Grant(context.WithoutCancel(ctx), userID, 1, "refund:"+feature); err != nil {
		telemetry.Error("assistant.refund.failed", map[string]interface{}{
			"user_id": userID,
			"feature": feature,
			"error":   err.Error(),
		})
	}
}

func writeError(c *gin.Context, err error) {
	var details any
	var ae *attemptsError
	if errors.As(err, &ae) {
		details = gin.H{"attempts": ae.attempts}
	}
	switch {
	case errors.Is(err, ErrEmptyResult):
		respond.Error(c, http.StatusBadGateway, "empty_result", "The AI service returned an empty answer. Please try again.", details)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusGatewayTimeout, "timeout", "The AI service took too long to answer.", details)
	default:
		kind := KindOf(err)
		respond.Error(c, ai.HTTPStatus(kind), string(kind), ai.Message(kind), details)
	}
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", err.Error())
		return false
	}
	return true
}
