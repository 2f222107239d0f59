package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/inkwellhq/inkwell/internal/application"
	"github.com/inkwellhq/inkwell/pkg/response"
	"github.com/inkwellhq/inkwell/pkg/validation"
)

type ShortURLHandler struct {
	Shortener *app.ShortenerService
	Logger    *logrus.Logger
}

func NewShortURLHandler(shortener *app.ShortenerService, logger *logrus.Logger) *ShortURLHandler {
	return &ShortURLHandler{Shortener: shortener, Logger: logger}
}

type shortenRequest struct {
	URL string `json:"url" binding:"required,url"`
}

func (h *ShortURLHandler) Shorten(c *gin.Context) {
	var req shortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	su, err := h.Shortener.Shorten(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, app.ErrInvalidURL) {
			response.Fail(c, http.StatusBadRequest, "invalid url", nil)
			return
		}
		h.Logger.WithError(err).Error("shorten failed")
		response.Fail(c, http.StatusInternalServerError, "could not shorten url", nil)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"slug": su.Slug, "short_url": su.ShortURL, "original_url": su.OriginalURL}, "url shortened")
}

// Resolve 302-redirects a slug to its original URL.
func (h *ShortURLHandler) Resolve(c *gin.Context) {
	target, err := h.Shortener.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, app.ErrSlugNotFound) {
			response.Fail(c, http.StatusNotFound, "short url not found", nil)
			return
		}
		h.Logger.WithError(err).Error("resolve failed")
		response.Fail(c, http.StatusInternalServerError, "could not resolve url", nil)
		return
	}
	c.Redirect(http.StatusFound, target)
}
