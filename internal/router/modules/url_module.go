package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/inkwellhq/inkwell/internal/interface/http"
	"github.com/inkwellhq/inkwell/internal/interface/middleware"
	"github.com/inkwellhq/inkwell/pkg/helpers"
)

// URLModule wires the shortener. Creating a slug requires auth; the
// redirect itself lives at the engine root (/u/:slug), outside /api.
type URLModule struct {
	URLs   *handlers.ShortURLHandler
	JWT    *helpers.JWTManager
	Engine *gin.Engine
}

func NewURLModule(urls *handlers.ShortURLHandler, jwt *helpers.JWTManager, engine *gin.Engine) *URLModule {
	return &URLModule{URLs: urls, JWT: jwt, Engine: engine}
}

func (m *URLModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.POST("/shorten", m.URLs.Shorten)
	}
	m.Engine.GET("/u/:slug", m.URLs.Resolve)
}
