package inkwell

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/inkwell/views"
)

// browser keeps cookies between requests to an App.
type browser struct {
	app     *App
	cookies map[string]*http.Cookie
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.app.Echo.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	if csrf, ok := b.cookies["_csrf"]; ok {
		form.Set("_csrf", csrf.Value)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return b.do(req)
}

func newAdminApp(t *testing.T) (*browser, *recordingRenderer, *Store) {
	t.Helper()
	store := setupTestStore(t)
	if _, err := store.CreateUser(context.Background(), User{Username: "tim", Name: "Tim"}, "hunter22"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	cfg := SiteConfig{
		URL:           "https://example.com",
		SessionSecret: "test-secret-test-secret-test-sec",
		UploadDir:     filepath.Join(t.TempDir(), "uploads"),
		LoginAttempts: 2,
	}
	app := New(cfg, WithStore(store))
	require.NoError(t, app.Init())
	t.Cleanup(func() { app.loginLimiter.Stop() })
	rec := &recordingRenderer{}
	app.Echo.Renderer = rec
	return &browser{app: app, cookies: map[string]*http.Cookie{}}, rec, store
}

func TestAdminLoginFlow(t *testing.T) {
	b, renderer, _ := newAdminApp(t)

	rec := b.get("/admin/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, TemplateLogin, renderer.last().name)
	assert.NotEmpty(t, renderer.last().params.String(views.KeyCSRF))

	rec = b.post("/admin/login/", url.Values{"username": {"tim"}, "password": {"hunter22"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get("Location"))

	rec = b.get("/admin/")
	require.Equal(t, http.StatusOK, rec.Code)
	call := renderer.last()
	assert.Equal(t, TemplateDashboard, call.name)
	user, ok := call.params.User()
	require.True(t, ok)
	assert.Equal(t, "tim", user.Username)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	// Public pages now see the signed-in viewer.
	b.get("/")
	user, ok = renderer.last().params.User()
	require.True(t, ok)
	assert.Equal(t, "Tim", user.Name)

	rec = b.post("/admin/logout/", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	b.get("/")
	_, ok = renderer.last().params.User()
	assert.False(t, ok)
}

func TestAdminLoginFailureAndLimit(t *testing.T) {
	b, renderer, _ := newAdminApp(t)
	b.get("/admin/")

	for i := 0; i < 2; i++ {
		rec := b.post("/admin/login/", url.Values{"username": {"tim"}, "password": {"wrong"}})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.True(t, renderer.last().params.Flag(views.FlagLoginError))
	}
	rec := b.post("/admin/login/", url.Values{"username": {"tim"}, "password": {"hunter22"}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAdminRequiresUser(t *testing.T) {
	b, _, _ := newAdminApp(t)

	rec := b.get("/admin/profile/")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get("Location"))
}

func TestAdminRejectsMissingCSRF(t *testing.T) {
	b, _, _ := newAdminApp(t)

	form := url.Values{"username": {"tim"}, "password": {"hunter22"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := b.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminSaveAndDeletePost(t *testing.T) {
	b, renderer, store := newAdminApp(t)
	b.get("/admin/")
	b.post("/admin/login/", url.Values{"username": {"tim"}, "password": {"hunter22"}})

	// Warm the cache so the save has to invalidate it.
	b.get("/")

	rec := b.post("/admin/save/", url.Values{
		"title":     {"Hello Inkwell"},
		"content":   {"First *post*."},
		"labels":    {"Go, go, Web"},
		"published": {"1"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "msg=Saved.")

	post, err := store.GetPost(context.Background(), "hello-inkwell")
	require.NoError(t, err)
	assert.Len(t, post.LabelIDs, 2)

	rec = b.get("/posts/hello-inkwell/")
	require.Equal(t, http.StatusOK, rec.Code)
	view, ok := renderer.last().params.Post()
	require.True(t, ok)
	assert.Equal(t, "Tim", view.AuthorName)

	rec = b.get("/admin/post/hello-inkwell/")
	require.Equal(t, http.StatusOK, rec.Code)
	edit, ok := renderer.last().params[views.KeyEditPost].(views.PostView)
	require.True(t, ok)
	assert.Equal(t, post.ID, edit.ID)

	rec = b.post("/admin/post/hello-inkwell/delete/", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = b.get("/posts/hello-inkwell/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminSaveDuplicateSlug(t *testing.T) {
	b, _, _ := newAdminApp(t)
	b.get("/admin/")
	b.post("/admin/login/", url.Values{"username": {"tim"}, "password": {"hunter22"}})

	b.post("/admin/save/", url.Values{"title": {"Same"}})
	rec := b.post("/admin/save/", url.Values{"title": {"Same"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape("Another post already uses that slug."))
}

func TestAdminSaveUnknownIDRejected(t *testing.T) {
	b, _, store := newAdminApp(t)
	b.get("/admin/")
	b.post("/admin/login/", url.Values{"username": {"tim"}, "password": {"hunter22"}})

	rec := b.post("/admin/save/", url.Values{"id": {"bogus"}, "title": {"Ghost"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape("That post no longer exists."))

	_, err := store.GetPostAny(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetPostByID(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminMyProfile(t *testing.T) {
	b, renderer, _ := newAdminApp(t)
	b.get("/admin/")
	b.post("/admin/login/", url.Values{"username": {"tim"}, "password": {"hunter22"}})

	rec := b.get("/admin/profile/")
	require.Equal(t, http.StatusOK, rec.Code)
	call := renderer.last()
	assert.Equal(t, TemplateProfile, call.name)
	assert.True(t, call.params.Flag(views.FlagMyProfile))
	assert.NotEmpty(t, call.params.String(views.KeyCSRF))
	user, ok := call.params.User()
	require.True(t, ok)
	profile, _ := call.params.ProfileUser()
	assert.Equal(t, profile, user)
}
