package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/inkwellhq/inkwell/internal/application"
	"github.com/inkwellhq/inkwell/internal/domain/entity"
	"github.com/inkwellhq/inkwell/internal/interface/middleware"
	"github.com/inkwellhq/inkwell/pkg/response"
	"github.com/inkwellhq/inkwell/pkg/validation"
)

type StoryHandler struct {
	Stories *app.StoryService
	Logger  *logrus.Logger
}

func NewStoryHandler(stories *app.StoryService, logger *logrus.Logger) *StoryHandler {
	return &StoryHandler{Stories: stories, Logger: logger}
}

type storyRequest struct {
	Title   string `json:"title" binding:"omitempty,max=200"`
	Content string `json:"content" binding:"required,max=5000"`
}

func storyJSON(st *entity.Story) gin.H {
	return gin.H{
		"id":         st.ID,
		"author_id":  st.AuthorID,
		"title":      st.Title,
		"content":    st.Content,
		"claps":      st.Claps,
		"created_at": st.CreatedAt,
		"updated_at": st.UpdatedAt,
	}
}

func (h *StoryHandler) Create(c *gin.Context) {
	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	st, err := h.Stories.Create(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), app.StoryInput{Title: req.Title, Content: req.Content})
	if err != nil {
		h.Logger.WithError(err).Error("create story failed")
		response.Fail(c, http.StatusInternalServerError, "could not create story", nil)
		return
	}
	response.OK(c, http.StatusCreated, storyJSON(st), "story created")
}

func (h *StoryHandler) List(c *gin.Context) {
	stories, err := h.Stories.List(c.Request.Context(), intQuery(c, "limit"), intQuery(c, "offset"))
	if err != nil {
		h.Logger.WithError(err).Error("list stories failed")
		response.Fail(c, http.StatusInternalServerError, "could not list stories", nil)
		return
	}
	out := make([]gin.H, 0, len(stories))
	for _, st := range stories {
		out = append(out, storyJSON(st))
	}
	response.OK(c, http.StatusOK, out, "stories")
}

func (h *StoryHandler) Get(c *gin.Context) {
	st, err := h.Stories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, "story not found", nil)
		return
	}
	response.OK(c, http.StatusOK, storyJSON(st), "story")
}

func (h *StoryHandler) Update(c *gin.Context) {
	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	st, err := h.Stories.Update(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), app.StoryInput{Title: req.Title, Content: req.Content})
	if err != nil {
		h.storyError(c, err, "update story failed")
		return
	}
	response.OK(c, http.StatusOK, storyJSON(st), "story updated")
}

func (h *StoryHandler) Delete(c *gin.Context) {
	if err := h.Stories.Delete(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		h.storyError(c, err, "delete story failed")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"deleted": true}, "story deleted")
}

func (h *StoryHandler) Clap(c *gin.Context) {
	var req clapRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	total, err := h.Stories.Clap(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), req.Count)
	if err != nil {
		h.storyError(c, err, "clap failed")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"claps": total}, "clapped")
}

func (h *StoryHandler) storyError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, app.ErrStoryNotFound):
		response.Fail(c, http.StatusNotFound, "story not found", nil)
	case errors.Is(err, app.ErrNotStoryOwner):
		response.Fail(c, http.StatusForbidden, "not allowed", nil)
	default:
		h.Logger.WithError(err).Error(logMsg)
		response.Fail(c, http.StatusInternalServerError, "request failed", nil)
	}
}
