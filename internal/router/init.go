package router

import (
	app "github.com/inkwellhq/inkwell/internal/application"
	"github.com/inkwellhq/inkwell/internal/container"
	pginfra "github.com/inkwellhq/inkwell/internal/infrastructure/postgres"
	handlers "github.com/inkwellhq/inkwell/internal/interface/http"
	"github.com/inkwellhq/inkwell/internal/router/modules"
)

// InitModules builds repositories, services and handlers from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()
	jwt := container.GetJWT()

	users := pginfra.NewUserRepository(pool)
	pending := pginfra.NewPendingUserRepository(pool)
	posts := pginfra.NewPostRepository(pool)
	stories := pginfra.NewStoryRepository(pool)
	follows := pginfra.NewFollowRepository(pool)
	shortURLs := pginfra.NewShortURLRepository(pool)

	authSvc := app.NewAuthService(users, pending, jwt, container.GetRabbitPub(), logger, cfg)
	userSvc := app.NewUserService(users, follows, container.GetGCS(), cfg.GCSBucket, container.GetRedis(), logger, container.GetES(), cfg.ESUsersIndex)
	postSvc := app.NewPostService(posts, logger, container.GetES(), cfg.ESPostsIndex)
	storySvc := app.NewStoryService(stories)
	shortSvc := app.NewShortenerService(shortURLs, container.GetRedis(), logger, cfg.SiteBaseURL)

	authHandler := handlers.NewAuthHandler(authSvc, userSvc, logger, cfg)
	oauthHandler := handlers.NewOAuthHandler(authSvc, userSvc, container.GetOAuthProviders(), container.GetRedis(), logger, cfg)
	userHandler := handlers.NewUserHandler(userSvc, postSvc, logger)
	searchHandler := handlers.NewSearchHandler(userSvc, postSvc, logger)
	postHandler := handlers.NewPostHandler(postSvc, logger)
	storyHandler := handlers.NewStoryHandler(storySvc, logger)
	urlHandler := handlers.NewShortURLHandler(shortSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, oauthHandler))
	r.Add(modules.NewUserModule(userHandler, searchHandler, jwt))
	r.Add(modules.NewPostModule(postHandler, jwt))
	r.Add(modules.NewStoryModule(storyHandler, jwt))
	r.Add(modules.NewURLModule(urlHandler, jwt, r.Engine))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
