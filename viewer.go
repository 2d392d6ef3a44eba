package inkwell

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/inkwell/views"
)

const (
	sessionName    = "inkwell_session"
	sessionUserKey = "user_id"
)

// ErrNoViewer is returned by an Authenticator when the request carries no
// signed-in user.
var ErrNoViewer = errors.New("inkwell: no authenticated user")

// Authenticator extracts the signed-in user from a request.
type Authenticator interface {
	CurrentUser(c echo.Context) (User, error)
}

// UserLookup loads a user by ID.
type UserLookup func(ctx context.Context, id string) (User, error)

// SessionAuth authenticates requests from the cookie session set at login.
type SessionAuth struct {
	Lookup UserLookup
}

// CurrentUser returns the user stored in the session. It fails with
// ErrNoViewer when nobody is signed in, and with other errors when the
// session cannot be decoded or the user no longer exists.
func (a SessionAuth) CurrentUser(c echo.Context) (User, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return User{}, err
	}
	raw, ok := sess.Values[sessionUserKey]
	if !ok {
		return User{}, ErrNoViewer
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return User{}, fmt.Errorf("inkwell: session user id has type %T", raw)
	}
	return a.Lookup(c.Request().Context(), id)
}

// ViewerResolver resolves the optional viewer of a request. Resolution
// never fails: every error is reported as "no viewer".
type ViewerResolver interface {
	ResolveViewer(c echo.Context) (views.UserView, bool)
}

type authViewerResolver struct {
	auth  Authenticator
	paths Paths
}

// NewViewerResolver returns a ViewerResolver backed by auth. Expired or
// tampered sessions, type mismatches and deleted users all resolve to no
// viewer so that a page render is never aborted by authentication.
func NewViewerResolver(auth Authenticator, paths Paths) ViewerResolver {
	return authViewerResolver{auth: auth, paths: paths}
}

func (r authViewerResolver) ResolveViewer(c echo.Context) (views.UserView, bool) {
	u, err := r.auth.CurrentUser(c)
	if err != nil {
		return views.UserView{}, false
	}
	return r.paths.UserView(u), true
}

// UserView projects u for display, leaving out credential material.
func (p Paths) UserView(u User) views.UserView {
	return views.UserView{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Bio:       u.Bio,
		AvatarURL: u.Avatar,
		Link:      p.Author(u.Username),
	}
}

func setViewerSession(c echo.Context, userID string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionUserKey] = userID
	return sess.Save(c.Request(), c.Response())
}

func clearViewerSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, sessionUserKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}
