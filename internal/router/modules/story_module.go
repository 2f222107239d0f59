package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/inkwellhq/inkwell/internal/interface/http"
	"github.com/inkwellhq/inkwell/internal/interface/middleware"
	"github.com/inkwellhq/inkwell/pkg/helpers"
)

// StoryModule wires short-form story routes.
type StoryModule struct {
	Stories *handlers.StoryHandler
	JWT     *helpers.JWTManager
}

func NewStoryModule(stories *handlers.StoryHandler, jwt *helpers.JWTManager) *StoryModule {
	return &StoryModule{Stories: stories, JWT: jwt}
}

func (m *StoryModule) Register(rg *gin.RouterGroup) {
	rg.GET("/stories", m.Stories.List)
	rg.GET("/stories/:id", m.Stories.Get)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.POST("/stories", m.Stories.Create)
		auth.PUT("/stories/:id", m.Stories.Update)
		auth.DELETE("/stories/:id", m.Stories.Delete)
		auth.POST("/stories/:id/clap", m.Stories.Clap)
	}
}
