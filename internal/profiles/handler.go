package profiles

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/storage/object"
)

const maxAvatarBytes = 2 << 20

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.GET("/profile", h.get)
	rg.PUT("/profile", h.save)
	rg.GET("/profile/username-available", h.usernameAvailable)
	rg.POST("/profile/avatar", h.uploadAvatar)
	rg.GET("/profile/avatar", h.avatar)
}

type profileResponse struct {
	Profile
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type saveRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"fullName" binding:"max=200"`
	Headline string `json:"headline" binding:"max=200"`
}

// me reports the authenticated identity and, once onboarding is done, its profile.
func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	out := gin.H{"id": userID, "email": middleware.UserEmailFromContext(c)}

	p, err := h.Svc.Get(c.Request.Context(), userID)
	switch {
	case err == nil:
		out["profile"] = profileResponse{Profile: p, AvatarURL: h.Svc.AvatarURL(c.Request.Context(), p)}
	case errors.Is(err, ErrNotFound):
		out["profile"] = nil
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load profile", nil)
		return
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, profileResponse{Profile: p, AvatarURL: h.Svc.AvatarURL(c.Request.Context(), p)})
}

func (h *Handler) save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	p, err := h.Svc.Save(c.Request.Context(), middleware.UserIDFromContext(c), SaveInput{
		Username: req.Username,
		FullName: req.FullName,
		Headline: req.Headline,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, profileResponse{Profile: p, AvatarURL: h.Svc.AvatarURL(c.Request.Context(), p)})
}

func (h *Handler) usernameAvailable(c *gin.Context) {
	out, err := h.Svc.CheckUsername(c.Request.Context(), middleware.UserIDFromContext(c), c.Query("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) uploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes+(64<<10))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > maxAvatarBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "avatar must be 2MB or smaller", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	p, err := h.Svc.UploadAvatar(c.Request.Context(), middleware.UserIDFromContext(c), fileHeader.Filename, file)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, profileResponse{Profile: p, AvatarURL: h.Svc.AvatarURL(c.Request.Context(), p)})
}

func (h *Handler) avatar(c *gin.Context) {
	rc, err := h.Svc.OpenAvatar(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()
	mime, body, err := object.Sniff(rc)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read avatar", nil)
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
		respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
	case errors.Is(err, ErrUsernameTaken):
		respond.Error(c, http.StatusConflict, "username_taken", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrUnsupportedImage):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "avatar must be PNG, JPEG or WebP", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "profile request failed", nil)
	}
}
