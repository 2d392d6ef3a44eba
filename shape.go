package inkwell

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/eringen/inkwell/views"
)

const (
	shortSnippetLen = 150
	longSnippetLen  = 400
)

// PostProjector turns a stored post into its display form.
type PostProjector interface {
	Project(ctx context.Context, post Post) (views.PostView, error)
}

type postProjector struct {
	repo  Repository
	paths Paths
	now   func() time.Time
}

// NewPostProjector returns a PostProjector that caches the author's name and
// the post's label names on the view and computes snippets and dates.
func NewPostProjector(repo Repository, paths Paths) PostProjector {
	return &postProjector{repo: repo, paths: paths, now: time.Now}
}

func (p *postProjector) Project(ctx context.Context, post Post) (views.PostView, error) {
	text := views.PlainText(post.Content)
	v := views.PostView{
		ID:           post.ID,
		Slug:         post.Slug,
		Title:        post.Title,
		Content:      post.Content,
		Link:         p.paths.Post(post.Slug),
		Created:      post.Created,
		CreatedDate:  post.Created.Format("January 2, 2006"),
		CreatedAgo:   humanize.RelTime(post.Created, p.now(), "ago", "from now"),
		ShortSnippet: Truncate(text, shortSnippetLen),
		LongSnippet:  Truncate(text, longSnippetLen),
		Published:    post.Published,
	}

	// A listing still renders when an author record is gone; only the
	// single post page insists on one.
	author, err := p.repo.AuthorOf(ctx, post)
	switch {
	case err == nil:
		v.AuthorName = author.Name
		v.AuthorUsername = author.Username
		v.AuthorLink = p.paths.Author(author.Username)
	case !errors.Is(err, ErrNotFound):
		return views.PostView{}, err
	}

	for _, id := range post.LabelIDs {
		l, err := p.repo.LabelByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return views.PostView{}, err
		}
		v.Labels = append(v.Labels, p.paths.LabelView(l))
	}
	return v, nil
}

// SortPosts returns a copy of posts ordered newest first. Posts created at
// the same instant are ordered by ID so the result is deterministic.
func SortPosts(posts []Post) []Post {
	sorted := make([]Post, len(posts))
	copy(sorted, posts)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
		return a.ID < b.ID
	})
	return sorted
}

// ShapePosts sorts posts newest first and projects each for display.
// The result is never nil.
func ShapePosts(ctx context.Context, projector PostProjector, posts []Post) ([]views.PostView, error) {
	out := make([]views.PostView, 0, len(posts))
	for _, post := range SortPosts(posts) {
		v, err := projector.Project(ctx, post)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ShapeLabels projects labels for display, keeping the order given.
func (p Paths) ShapeLabels(labels []Label) []views.LabelView {
	out := make([]views.LabelView, 0, len(labels))
	for _, l := range labels {
		out = append(out, p.LabelView(l))
	}
	return out
}

func (p Paths) LabelView(l Label) views.LabelView {
	return views.LabelView{ID: l.ID, Name: l.Name, Link: p.Label(l.Name)}
}
