package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/inkwellhq/inkwell/internal/interface/http"
	"github.com/inkwellhq/inkwell/internal/interface/middleware"
	"github.com/inkwellhq/inkwell/pkg/helpers"
)

// PostModule wires article routes. Reads are public, writes require auth.
type PostModule struct {
	Posts *handlers.PostHandler
	JWT   *helpers.JWTManager
}

func NewPostModule(posts *handlers.PostHandler, jwt *helpers.JWTManager) *PostModule {
	return &PostModule{Posts: posts, JWT: jwt}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	rg.GET("/posts", m.Posts.List)
	rg.GET("/posts/:id", m.Posts.Get)
	rg.GET("/posts/:id/comments", m.Posts.ListComments)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.POST("/posts", m.Posts.Create)
		auth.PUT("/posts/:id", m.Posts.Update)
		auth.DELETE("/posts/:id", m.Posts.Delete)
		auth.POST("/posts/:id/clap", m.Posts.Clap)
		auth.POST("/posts/:id/comments", m.Posts.AddComment)
		auth.DELETE("/posts/:id/comments/:commentId", m.Posts.DeleteComment)
	}
}
