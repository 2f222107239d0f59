package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/inkwellhq/inkwell/internal/application"
	"github.com/inkwellhq/inkwell/internal/domain/entity"
	"github.com/inkwellhq/inkwell/internal/interface/middleware"
	"github.com/inkwellhq/inkwell/pkg/response"
	"github.com/inkwellhq/inkwell/pkg/validation"
)

type PostHandler struct {
	Posts  *app.PostService
	Logger *logrus.Logger
}

func NewPostHandler(posts *app.PostService, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Posts: posts, Logger: logger}
}

type postRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"required"`
	ImageURL string `json:"image_url" binding:"omitempty,url"`
}

type postUpdateRequest struct {
	Title    string `json:"title" binding:"omitempty,max=200"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url" binding:"omitempty,url"`
}

type clapRequest struct {
	Count int `json:"count" binding:"omitempty,min=1,max=50"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

func intQuery(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}

func postJSON(p *entity.Post) gin.H {
	return gin.H{
		"id":            p.ID,
		"author_id":     p.AuthorID,
		"author_name":   p.AuthorName,
		"author_avatar": p.AuthorAvatar,
		"title":         p.Title,
		"content":       p.Content,
		"image_url":     p.ImageURL,
		"claps":         p.Claps,
		"created_at":    p.CreatedAt,
		"updated_at":    p.UpdatedAt,
	}
}

func postsJSON(posts []*entity.Post) []gin.H {
	out := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		out = append(out, postJSON(p))
	}
	return out
}

func commentJSON(cm *entity.Comment) gin.H {
	return gin.H{
		"id":            cm.ID,
		"post_id":       cm.PostID,
		"author_id":     cm.AuthorID,
		"author_name":   cm.AuthorName,
		"author_avatar": cm.AuthorAvatar,
		"content":       cm.Content,
		"created_at":    cm.CreatedAt,
	}
}

func (h *PostHandler) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Posts.Create(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), app.PostInput{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		h.Logger.WithError(err).Error("create post failed")
		response.Fail(c, http.StatusInternalServerError, "could not create post", nil)
		return
	}
	response.OK(c, http.StatusCreated, postJSON(p), "post created")
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.Posts.List(c.Request.Context(), intQuery(c, "limit"), intQuery(c, "offset"))
	if err != nil {
		h.Logger.WithError(err).Error("list posts failed")
		response.Fail(c, http.StatusInternalServerError, "could not list posts", nil)
		return
	}
	response.OK(c, http.StatusOK, postsJSON(posts), "posts")
}

func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.Posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, "post not found", nil)
		return
	}
	response.OK(c, http.StatusOK, postJSON(p), "post")
}

func (h *PostHandler) Update(c *gin.Context) {
	var req postUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Posts.Update(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), app.PostInput{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		h.postError(c, err, "update post failed")
		return
	}
	response.OK(c, http.StatusOK, postJSON(p), "post updated")
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.Posts.Delete(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		h.postError(c, err, "delete post failed")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"deleted": true}, "post deleted")
}

func (h *PostHandler) Clap(c *gin.Context) {
	// An empty body means a single clap.
	var req clapRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	total, err := h.Posts.Clap(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), req.Count)
	if err != nil {
		h.postError(c, err, "clap failed")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"claps": total}, "clapped")
}

func (h *PostHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	cm, err := h.Posts.AddComment(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), req.Content)
	if err != nil {
		h.postError(c, err, "add comment failed")
		return
	}
	response.OK(c, http.StatusCreated, commentJSON(cm), "comment added")
}

func (h *PostHandler) ListComments(c *gin.Context) {
	comments, err := h.Posts.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.postError(c, err, "list comments failed")
		return
	}
	out := make([]gin.H, 0, len(comments))
	for _, cm := range comments {
		out = append(out, commentJSON(cm))
	}
	response.OK(c, http.StatusOK, out, "comments")
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	err := h.Posts.DeleteComment(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("commentId"))
	if err != nil {
		if errors.Is(err, app.ErrCommentNotFound) {
			response.Fail(c, http.StatusNotFound, "comment not found", nil)
			return
		}
		h.postError(c, err, "delete comment failed")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"deleted": true}, "comment deleted")
}

func (h *PostHandler) postError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, app.ErrPostNotFound):
		response.Fail(c, http.StatusNotFound, "post not found", nil)
	case errors.Is(err, app.ErrNotPostOwner):
		response.Fail(c, http.StatusForbidden, "not allowed", nil)
	default:
		h.Logger.WithError(err).Error(logMsg)
		response.Fail(c, http.StatusInternalServerError, "request failed", nil)
	}
}
