package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/inkwellhq/inkwell/internal/application"
	"github.com/inkwellhq/inkwell/pkg/response"
)

// SearchHandler fans a query out to the users and posts indexes.
type SearchHandler struct {
	Users  *app.UserService
	Posts  *app.PostService
	Logger *logrus.Logger
}

func NewSearchHandler(users *app.UserService, posts *app.PostService, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{Users: users, Posts: posts, Logger: logger}
}

func (h *SearchHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Fail(c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size := intQuery(c, "size")

	users, uerr := h.Users.SearchUsers(c.Request.Context(), q, size)
	if uerr != nil {
		h.Logger.WithError(uerr).Warn("user search failed")
		users = []map[string]any{}
	}
	posts, perr := h.Posts.SearchPosts(c.Request.Context(), q, size)
	if perr != nil {
		h.Logger.WithError(perr).Warn("post search failed")
		posts = []map[string]any{}
	}
	response.OK(c, http.StatusOK, gin.H{"users": users, "posts": posts}, "search results")
}
