package inkwell

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkwell/views"
)

// ProfileRenderer renders a user's profile page. isMyProfile is true when
// the viewer is looking at their own profile from the admin area.
type ProfileRenderer interface {
	RenderProfile(c echo.Context, user User, isMyProfile bool) error
}

type profileView struct {
	repo      Repository
	projector PostProjector
	paths     Paths
	viewers   ViewerResolver
}

// NewProfileRenderer returns the default ProfileRenderer, rendering
// TemplateProfile with the user's published posts.
func NewProfileRenderer(repo Repository, projector PostProjector, paths Paths, viewers ViewerResolver) ProfileRenderer {
	return &profileView{repo: repo, projector: projector, paths: paths, viewers: viewers}
}

func (p *profileView) RenderProfile(c echo.Context, user User, isMyProfile bool) error {
	ctx := c.Request().Context()
	posts, err := p.repo.PostsByAuthor(ctx, user)
	if err != nil {
		return err
	}
	params := views.Params{
		views.KeyProfileUser:  p.paths.UserView(user),
		views.FlagProfilePage: true,
		views.FlagMyProfile:   isMyProfile,
	}
	if len(posts) > 0 {
		shaped, err := ShapePosts(ctx, p.projector, posts)
		if err != nil {
			return err
		}
		params[views.KeyPosts] = shaped
	}
	if isMyProfile {
		params[views.KeyUser] = p.paths.UserView(user)
		params[views.KeyCSRF] = CsrfToken(c)
	} else if viewer, ok := p.viewers.ResolveViewer(c); ok {
		params[views.KeyUser] = viewer
	}
	return c.Render(http.StatusOK, TemplateProfile, params)
}
