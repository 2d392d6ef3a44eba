package inkwell

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkwell/views"
)

const ctxViewer = "inkwell.viewer"

func (a *App) registerAdminRoutes(g *echo.Group) {
	g.GET("/", a.handleAdmin)
	g.POST("/login/", a.handleLogin)
	g.POST("/logout/", handleLogout)
	g.GET("/post/:slug/", a.handleAdminPost, a.requireUser)
	g.POST("/save/", a.handleAdminSave, a.requireUser)
	g.POST("/post/:slug/delete/", a.handleAdminDelete, a.requireUser)
	g.GET("/profile/", a.handleMyProfile, a.requireUser)
	g.POST("/avatar/", a.handleAvatarUpload, a.requireUser)
}

func (a *App) handleAdmin(c echo.Context) error {
	u, err := a.auth.CurrentUser(c)
	if err != nil {
		return c.Render(http.StatusOK, TemplateLogin, views.Params{views.KeyCSRF: CsrfToken(c)})
	}
	return a.renderDashboard(c, u, c.QueryParam("msg"), nil)
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	username := strings.TrimSpace(c.FormValue("username"))
	u, err := a.Store.Authenticate(c.Request().Context(), username, c.FormValue("password"))
	if errors.Is(err, ErrNotFound) {
		a.loginLimiter.Record(ip)
		return c.Render(http.StatusUnauthorized, TemplateLogin, views.Params{
			views.KeyCSRF:        CsrfToken(c),
			views.FlagLoginError: true,
		})
	}
	if err != nil {
		return err
	}
	a.loginLimiter.Reset(ip)
	if err := setViewerSession(c, u.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, a.paths.Admin())
}

func handleLogout(c echo.Context) error {
	if err := clearViewerSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminPost(c echo.Context) error {
	post, err := a.Store.GetPostAny(c.Request().Context(), c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return a.renderDashboard(c, c.Get(ctxViewer).(User), "", &post)
}

// handleAdminSave creates or updates a post. New posts belong to the
// signed-in user; edits keep their original author and creation time.
func (a *App) handleAdminSave(c echo.Context) error {
	user := c.Get(ctxViewer).(User)
	title := strings.TrimSpace(c.FormValue("title"))
	slug := Slugify(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if title == "" || slug == "" {
		return a.redirectWithMessage(c, "Title is required.")
	}
	id := strings.TrimSpace(c.FormValue("id"))
	if id != "" {
		_, err := a.Store.GetPostByID(c.Request().Context(), id)
		if errors.Is(err, ErrNotFound) {
			return a.redirectWithMessage(c, "That post no longer exists.")
		}
		if err != nil {
			return err
		}
	}
	post := Post{
		ID:        id,
		Slug:      slug,
		Title:     title,
		Content:   c.FormValue("content"),
		AuthorID:  user.ID,
		Published: c.FormValue("published") != "",
	}
	if _, err := a.Store.SavePost(c.Request().Context(), post, SplitLabels(c.FormValue("labels"))); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return a.redirectWithMessage(c, "Another post already uses that slug.")
		}
		return err
	}
	a.invalidate()
	return a.redirectWithMessage(c, "Saved.")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	err := a.Store.DeletePost(c.Request().Context(), c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	a.invalidate()
	return a.redirectWithMessage(c, "Deleted.")
}

func (a *App) handleMyProfile(c echo.Context) error {
	return a.profiles.RenderProfile(c, c.Get(ctxViewer).(User), true)
}

func (a *App) renderDashboard(c echo.Context, user User, msg string, edit *Post) error {
	ctx := c.Request().Context()
	posts, err := a.Store.ListAllPosts(ctx)
	if err != nil {
		return err
	}
	shaped, err := ShapePosts(ctx, a.projector, posts)
	if err != nil {
		return err
	}
	params := views.Params{
		views.KeyPosts:   shaped,
		views.KeyUser:    a.paths.UserView(user),
		views.KeyCSRF:    CsrfToken(c),
		views.KeyMessage: msg,
	}
	if edit != nil {
		v, err := a.projector.Project(ctx, *edit)
		if err != nil {
			return err
		}
		params[views.KeyEditPost] = v
	}
	return c.Render(http.StatusOK, TemplateDashboard, params)
}

func (a *App) redirectWithMessage(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, a.paths.Admin()+"?msg="+url.QueryEscape(msg))
}

// invalidate drops cached content after a write.
func (a *App) invalidate() {
	if a.Cache != nil {
		a.Cache.Invalidate()
	}
}
