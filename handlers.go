package inkwell

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/inkwell/views"
)

// Context keys for entities bound by the route middlewares.
const (
	ctxPost   = "inkwell.post"
	ctxLabel  = "inkwell.label"
	ctxAuthor = "inkwell.author"
)

func (a *App) registerBlogRoutes(g *echo.Group) {
	g.GET("/", a.handleIndex)
	g.GET("/posts/:post/", a.handlePost, a.bindPost)
	g.GET("/labels/:label/", a.handleLabel, a.bindLabel)
	g.GET("/authors/:author/", a.handleAuthor, a.bindAuthor)
}

func (a *App) handleIndex(c echo.Context) error {
	return a.renderPage(c, PageIndex, PageData{})
}

func (a *App) handlePost(c echo.Context) error {
	return a.renderPage(c, PageSinglePost, PageData{Post: c.Get(ctxPost).(Post)})
}

func (a *App) handleLabel(c echo.Context) error {
	return a.renderPage(c, PageLabel, PageData{Label: c.Get(ctxLabel).(Label)})
}

// handleAuthor always renders a third-party view of the profile; the
// owner's own view lives under the admin area.
func (a *App) handleAuthor(c echo.Context) error {
	return a.profiles.RenderProfile(c, c.Get(ctxAuthor).(User), false)
}

// renderPage resolves the viewer, assembles the parameters for kind and
// renders its template. A missing post author becomes a 400.
func (a *App) renderPage(c echo.Context, kind PageKind, data PageData) error {
	var viewer *views.UserView
	if v, ok := a.viewers.ResolveViewer(c); ok {
		viewer = &v
	}
	params, err := a.assembler.Assemble(c.Request().Context(), kind, data, viewer)
	if errors.Is(err, ErrMissingAuthor) {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, kind.Template(), params)
}

// bind returns a middleware that resolves a path parameter through lookup
// and stores the result under key. Unknown identifiers are a 404.
func bind[T any](param, key string, lookup func(c echo.Context, id string) (T, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Param(param)
			// echo routes on RawPath when it is set, leaving params escaped.
			// Otherwise they are already decoded.
			if c.Request().URL.RawPath != "" {
				if unescaped, err := url.PathUnescape(id); err == nil {
					id = unescaped
				}
			}
			v, err := lookup(c, id)
			if errors.Is(err, ErrNotFound) {
				return echo.ErrNotFound
			}
			if err != nil {
				return err
			}
			c.Set(key, v)
			return next(c)
		}
	}
}

func (a *App) bindPost(next echo.HandlerFunc) echo.HandlerFunc {
	return bind("post", ctxPost, func(c echo.Context, slug string) (Post, error) {
		return a.repo.PostBySlug(c.Request().Context(), slug)
	})(next)
}

func (a *App) bindLabel(next echo.HandlerFunc) echo.HandlerFunc {
	return bind("label", ctxLabel, func(c echo.Context, name string) (Label, error) {
		return a.repo.LabelByName(c.Request().Context(), name)
	})(next)
}

func (a *App) bindAuthor(next echo.HandlerFunc) echo.HandlerFunc {
	return bind("author", ctxAuthor, func(c echo.Context, username string) (User, error) {
		return a.repo.UserByUsername(c.Request().Context(), username)
	})(next)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.shapedPosts(c)
	if err != nil {
		return err
	}
	labels, err := a.repo.AllLabels(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, a.paths.ShapeLabels(labels))
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.shapedPosts(c)
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) shapedPosts(c echo.Context) ([]views.PostView, error) {
	ctx := c.Request().Context()
	posts, err := a.repo.AllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return ShapePosts(ctx, a.projector, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\nDisallow: /admin/\nSitemap: "+AbsoluteURL(a.Config.URL, "/sitemap.xml")+"\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = c.Render(http.StatusNotFound, TemplateNotFound, a.errorParams(c))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI))
		_ = c.Render(code, TemplateServerError, a.errorParams(c))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func (a *App) errorParams(c echo.Context) views.Params {
	params := views.Params{}
	if a.viewers == nil {
		return params
	}
	if v, ok := a.viewers.ResolveViewer(c); ok {
		params[views.KeyUser] = v
	}
	return params
}
