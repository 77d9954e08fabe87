package branding

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/storage/object"
)

const maxLogoBytes = 1 << 20

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/branding", h.get)
	rg.PUT("/branding", h.upsert)
	rg.DELETE("/branding", h.reset)
	rg.POST("/branding/logo", h.uploadLogo)
	rg.GET("/branding/logo", h.logo)
}

type brandingRequest struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	FontFamily     string `json:"fontFamily" binding:"max=100"`
}

type brandingResponse struct {
	PrimaryColor   string    `json:"primaryColor"`
	SecondaryColor string    `json:"secondaryColor"`
	FontFamily     string    `json:"fontFamily"`
	LogoURL        string    `json:"logoUrl,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}

func (h *Handler) write(c *gin.Context, b Branding) {
	respond.JSON(c, http.StatusOK, brandingResponse{
		PrimaryColor:   b.PrimaryColor,
		SecondaryColor: b.SecondaryColor,
		FontFamily:     b.FontFamily,
		LogoURL:        h.Svc.LogoURL(c.Request.Context(), b),
		UpdatedAt:      b.UpdatedAt,
	})
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.write(c, b)
}

func (h *Handler) upsert(c *gin.Context) {
	var req brandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", err.Error())
		return
	}
	b, err := h.Svc.Upsert(c.Request.Context(), middleware.UserIDFromContext(c), Input{
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		FontFamily:     req.FontFamily,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.write(c, b)
}

func (h *Handler) reset(c *gin.Context) {
	b, err := h.Svc.Reset(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.write(c, b)
}

func (h *Handler) uploadLogo(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxLogoBytes+(64<<10))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > maxLogoBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "logo must be 1MB or smaller", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	b, err := h.Svc.UploadLogo(c.Request.Context(), middleware.UserIDFromContext(c), fileHeader.Filename, file)
	if err != nil {
		writeError(c, err)
		return
	}
	h.write(c, b)
}

func (h *Handler) logo(c *gin.Context) {
	rc, err := h.Svc.OpenLogo(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()
	mime, body, err := object.Sniff(rc)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read logo", nil)
		return
	}
	c.Header("Content-Type", mime)
	c.Header("Cache-Control", "private, max-age=300")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "logo not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrUnsupportedImage):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "logo must be PNG, JPEG, SVG or WebP", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "branding request failed", nil)
	}
}
