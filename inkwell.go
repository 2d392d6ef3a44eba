// Package inkwell is a blog publishing engine built with Go, Echo, and templ.
// It serves an index of posts, single posts, label listings and author
// profiles, and ships an admin area for writing posts.
//
// Every public page resolves an optional signed-in viewer, assembles a
// views.Params set for its page kind and renders a named template. Sites
// can swap any template via WithTemplates.
package inkwell

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/inkwell/views"
)

// App is the central inkwell application. It wires together the store,
// cache, page collaborators, handlers, middleware and templates.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Store     *Store
	Cache     *PostCache
	Logger    *zap.Logger
	Templates map[string]TemplateFunc

	paths        Paths
	repo         Repository
	auth         Authenticator
	viewers      ViewerResolver
	projector    PostProjector
	assembler    *Assembler
	profiles     ProfileRenderer
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
}

// New creates an App with the given configuration and options. Call Init
// or Start to open storage and register routes.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Logger:    zap.NewNop(),
		Templates: DefaultTemplates(),
		paths:     NewPaths(cfg.BlogPath),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the store (unless a repository was supplied), builds the page
// collaborators, and registers middleware and routes.
func (a *App) Init() error {
	if a.Config.SessionSecret == "" {
		return errors.New("inkwell: SessionSecret is required")
	}

	if a.repo == nil {
		if a.Store == nil {
			store, err := NewStore(a.Config.DatabasePath)
			if err != nil {
				return fmt.Errorf("inkwell: init store: %w", err)
			}
			a.Store = store
		}
		a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
		a.repo = a.Cache
	}

	if a.auth == nil {
		lookup := a.repo.UserByID
		if a.Store != nil {
			// Sessions are checked against the database so a deleted user
			// is signed out without waiting for the cache.
			lookup = a.Store.GetUser
		}
		a.auth = SessionAuth{Lookup: lookup}
	}
	if a.viewers == nil {
		a.viewers = NewViewerResolver(a.auth, a.paths)
	}
	a.projector = NewPostProjector(a.repo, a.paths)
	a.assembler = NewAssembler(a.repo, a.projector, a.paths)
	if a.profiles == nil {
		a.profiles = NewProfileRenderer(a.repo, a.projector, a.paths, a.viewers)
	}
	a.loginLimiter = NewLoginLimiter(a.Config.LoginAttempts, a.Config.LoginWindow)

	a.Echo.Renderer = &TemplateRenderer{Site: a.site(), Templates: a.Templates}
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves HTTP on Config.Addr.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Info("listening", zap.String("addr", a.Config.Addr), zap.String("blog", a.paths.Index()))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Home:        a.paths.Index(),
		Admin:       a.paths.Admin(),
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/robots.txt", a.handleRobots)

	a.registerBlogRoutes(e.Group(a.paths.Prefix()))

	// The admin area writes through the Store; a read-only repository has none.
	if a.Store != nil {
		e.Static("/uploads", a.Config.UploadDir)
		a.registerAdminRoutes(e.Group("/admin"))
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
