package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/inkwellhq/inkwell/internal/application"
	"github.com/inkwellhq/inkwell/internal/domain/entity"
	"github.com/inkwellhq/inkwell/internal/interface/middleware"
	"github.com/inkwellhq/inkwell/pkg/response"
	"github.com/inkwellhq/inkwell/pkg/validation"
)

type UserHandler struct {
	Users  *app.UserService
	Posts  *app.PostService
	Logger *logrus.Logger
}

func NewUserHandler(users *app.UserService, posts *app.PostService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Posts: posts, Logger: logger}
}

type updateProfileRequest struct {
	Name      string `json:"name" binding:"omitempty,max=100"`
	Username  string `json:"username" binding:"omitempty,max=50"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url"`
}

func profileJSON(u *entity.User, private bool) gin.H {
	out := gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"username":   u.Username,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt,
	}
	if private {
		out["email"] = u.Email
		out["provider"] = u.Provider
		out["email_verified"] = u.EmailVerified
		out["updated_at"] = u.UpdatedAt
	}
	return out
}

// Me returns the authenticated user's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Users.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Fail(c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.OK(c, http.StatusOK, profileJSON(u, true), "profile")
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Users.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), app.UpdateProfileInput{
		Name:      req.Name,
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, app.ErrUsernameTaken) {
			response.Fail(c, http.StatusConflict, "username taken", nil)
			return
		}
		h.Logger.WithError(err).Error("update profile failed")
		response.Fail(c, http.StatusInternalServerError, "failed to update profile", nil)
		return
	}
	response.OK(c, http.StatusOK, profileJSON(u, true), "profile updated")
}

// UploadAvatar takes a multipart "avatar" file and stores it in GCS.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "could not read avatar file", nil)
		return
	}
	defer func() { _ = src.Close() }()

	url, err := h.Users.UploadAvatar(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), src, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		h.Logger.WithError(err).Error("avatar upload failed")
		response.Fail(c, http.StatusInternalServerError, "avatar upload failed", nil)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar updated")
}

// PublicProfile returns another user's public profile and follow state.
func (h *UserHandler) PublicProfile(c *gin.Context) {
	u, err := h.Users.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, "user not found", nil)
		return
	}
	out := profileJSON(u, false)
	if viewer := c.GetString(middleware.CtxUserIDKey); viewer != "" {
		if following, ferr := h.Users.IsFollowing(c.Request.Context(), viewer, u.ID); ferr == nil {
			out["following"] = following
		}
	}
	response.OK(c, http.StatusOK, out, "profile")
}

// ListUserPosts returns another user's posts.
func (h *UserHandler) ListUserPosts(c *gin.Context) {
	posts, err := h.Posts.ListByAuthor(c.Request.Context(), c.Param("id"), intQuery(c, "limit"), intQuery(c, "offset"))
	if err != nil {
		h.Logger.WithError(err).Error("listing user posts failed")
		response.Fail(c, http.StatusInternalServerError, "could not list posts", nil)
		return
	}
	response.OK(c, http.StatusOK, postsJSON(posts), "posts")
}

// ToggleFollow follows the target when not following, unfollows otherwise.
func (h *UserHandler) ToggleFollow(c *gin.Context) {
	following, err := h.Users.ToggleFollow(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, "user not found", nil)
			return
		}
		response.Fail(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"following": following}, "follow toggled")
}

// IsFollowing reports whether the authenticated viewer follows the target.
func (h *UserHandler) IsFollowing(c *gin.Context) {
	following, err := h.Users.IsFollowing(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		h.Logger.WithError(err).Error("follow lookup failed")
		response.Fail(c, http.StatusInternalServerError, "could not check follow state", nil)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"following": following}, "follow state")
}

// DeleteAccount removes the authenticated user and everything they own.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.Users.DeleteAccount(c.Request.Context(), c.GetString(middleware.CtxUserIDKey)); err != nil {
		h.Logger.WithError(err).Error("account deletion failed")
		response.Fail(c, http.StatusInternalServerError, "could not delete account", nil)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"deleted": true}, "account deleted")
}
