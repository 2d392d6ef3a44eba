package inkwell

import (
	"context"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkwell/views"
)

// memRepo is an in-memory Repository for page tests.
type memRepo struct {
	posts  []Post
	labels []Label
	users  []User
	err    error
}

func (r *memRepo) AllPosts(context.Context) ([]Post, error) {
	return r.posts, r.err
}

func (r *memRepo) AllLabels(context.Context) ([]Label, error) {
	return r.labels, r.err
}

func (r *memRepo) PostsForLabel(_ context.Context, label Label) ([]Post, error) {
	if r.err != nil {
		return nil, r.err
	}
	posts := []Post{}
	for _, p := range r.posts {
		for _, id := range p.LabelIDs {
			if id == label.ID {
				posts = append(posts, p)
			}
		}
	}
	return posts, nil
}

func (r *memRepo) PostsByAuthor(_ context.Context, author User) ([]Post, error) {
	var posts []Post
	for _, p := range r.posts {
		if p.AuthorID == author.ID {
			posts = append(posts, p)
		}
	}
	return posts, r.err
}

func (r *memRepo) AuthorOf(ctx context.Context, post Post) (User, error) {
	return r.UserByID(ctx, post.AuthorID)
}

func (r *memRepo) PostBySlug(_ context.Context, slug string) (Post, error) {
	for _, p := range r.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

func (r *memRepo) LabelByID(_ context.Context, id string) (Label, error) {
	for _, l := range r.labels {
		if l.ID == id {
			return l, nil
		}
	}
	return Label{}, ErrNotFound
}

func (r *memRepo) LabelByName(_ context.Context, name string) (Label, error) {
	for _, l := range r.labels {
		if normalizeLabel(l.Name) == normalizeLabel(name) {
			return l, nil
		}
	}
	return Label{}, ErrNotFound
}

func (r *memRepo) UserByID(_ context.Context, id string) (User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memRepo) UserByUsername(_ context.Context, username string) (User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// fixtureRepo holds two authors, two labels and three published posts.
// "orphan" has no author record.
func fixtureRepo() *memRepo {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &memRepo{
		users: []User{
			{ID: "u1", Username: "tim", Name: "Tim", Bio: "writes things", PasswordHash: "$2a$10$secret"},
			{ID: "u2", Username: "ada", Name: "Ada"},
		},
		labels: []Label{
			{ID: "l1", Name: "Swift"},
			{ID: "l2", Name: "Vapor"},
			{ID: "l3", Name: "Empty"},
		},
		posts: []Post{
			{ID: "p1", Slug: "first", Title: "First", Content: "Hello **world**.", Created: base, LabelIDs: []string{"l1"}, AuthorID: "u1", Published: true},
			{ID: "p2", Slug: "second", Title: "Second", Content: "More words.", Created: base.Add(24 * time.Hour), LabelIDs: []string{"l1", "l2"}, AuthorID: "u2", Published: true},
			{ID: "p3", Slug: "orphan", Title: "Orphan", Content: "Nobody wrote this.", Created: base.Add(-24 * time.Hour), AuthorID: "gone", Published: true},
		},
	}
}

// staticViewer resolves every request to the same viewer, or to none.
type staticViewer struct {
	user *views.UserView
}

func (s staticViewer) ResolveViewer(echo.Context) (views.UserView, bool) {
	if s.user == nil {
		return views.UserView{}, false
	}
	return *s.user, true
}

// rendered is one call captured by recordingRenderer.
type rendered struct {
	name   string
	params views.Params
}

type recordingRenderer struct {
	calls []rendered
}

func (r *recordingRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	p, _ := data.(views.Params)
	r.calls = append(r.calls, rendered{name: name, params: p})
	_, err := io.WriteString(w, name)
	return err
}

func (r *recordingRenderer) last() rendered {
	if len(r.calls) == 0 {
		return rendered{}
	}
	return r.calls[len(r.calls)-1]
}
