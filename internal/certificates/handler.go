package certificates

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/util"
)

const maxFileBytes = 10 << 20

// Handler exposes certificate endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches certificate routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/certificates", h.list)
	rg.POST("/certificates", h.create)
	rg.GET("/certificates/:id", h.get)
	rg.PUT("/certificates/:id", h.update)
	rg.DELETE("/certificates/:id", h.delete)
	rg.POST("/certificates/:id/file", h.uploadFile)
	rg.GET("/certificates/:id/file", h.downloadFile)
	rg.POST("/certificates/:id/file/presign", h.presign)
	rg.POST("/certificates/:id/file/confirm", h.confirm)
}

func (h *Handler) writeCert(c *gin.Context, status int, cert Certificate) {
	respond.JSON(c, status, toResponse(cert, h.Svc.FileURL(c.Request.Context(), cert), time.Now()))
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := util.ParsePage(c.Query("limit"), c.Query("offset"), 50, 100)
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	now := time.Now()
	out := make([]CertificateResponse, 0, len(items))
	for _, cert := range items {
		out = append(out, toResponse(cert, h.Svc.FileURL(c.Request.Context(), cert), now))
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": out, "limit": limit, "offset": offset})
}

func (h *Handler) create(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	cert, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeCert(c, http.StatusCreated, cert)
}

func (h *Handler) get(c *gin.Context) {
	cert, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeCert(c, http.StatusOK, cert)
}

func (h *Handler) update(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	cert, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeCert(c, http.StatusOK, cert)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) uploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFileBytes+(64<<10))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > maxFileBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "file must be 10MB or smaller", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	cert, err := h.Svc.AttachFile(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), fileHeader.Filename, file)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeCert(c, http.StatusOK, cert)
}

func (h *Handler) downloadFile(c *gin.Context) {
	rc, err := h.Svc.OpenFile(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()
	mime, body, err := object.Sniff(rc)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read file", nil)
		return
	}
	c.Header("Content-Type", mime)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}

func (h *Handler) presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName is required", nil)
		return
	}
	ticket, err := h.Svc.PresignUpload(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.FileName)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, ticket)
}

func (h *Handler) confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileKey is required", nil)
		return
	}
	cert, err := h.Svc.ConfirmUpload(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.FileKey)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeCert(c, http.StatusOK, cert)
}

func bindInput(c *gin.Context) (Input, bool) {
	var req certificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", err.Error())
		return Input{}, false
	}
	in, err := req.input()
	if err != nil {
		writeError(c, err)
		return Input{}, false
	}
	return in, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "certificate not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrUnsupportedFile):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "file must be PDF, PNG or JPEG", nil)
	case errors.Is(err, ErrPresignUnavailable):
		respond.Error(c, http.StatusNotImplemented, "not_implemented", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "certificate request failed", nil)
	}
}
