package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/inkwellhq/inkwell/internal/interface/http"
	"github.com/inkwellhq/inkwell/internal/interface/middleware"
	"github.com/inkwellhq/inkwell/pkg/helpers"
)

// UserModule wires profile, follow and search routes.
// Public: GET /api/users/:id, GET /api/users/:id/posts, GET /api/search
// Protected: profile read/update, avatar upload, follow toggle and lookup,
// account deletion
type UserModule struct {
	Users  *handlers.UserHandler
	Search *handlers.SearchHandler
	JWT    *helpers.JWTManager
}

func NewUserModule(users *handlers.UserHandler, search *handlers.SearchHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Users: users, Search: search, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/users/:id", middleware.OptionalAuth(m.JWT), m.Users.PublicProfile)
	rg.GET("/users/:id/posts", m.Users.ListUserPosts)
	rg.GET("/search", m.Search.Search)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.GET("/profile", m.Users.Me)
		auth.PUT("/profile", m.Users.UpdateProfile)
		auth.POST("/profile/avatar", m.Users.UploadAvatar)
		auth.DELETE("/account", m.Users.DeleteAccount)
		auth.POST("/users/:id/follow", m.Users.ToggleFollow)
		auth.GET("/users/:id/is-following", m.Users.IsFollowing)
	}
}
