package inkwell

import (
	"context"
	"errors"
	"fmt"

	"github.com/eringen/inkwell/views"
)

// PageData carries the entities a route has already bound.
type PageData struct {
	Post  Post  // PageSinglePost
	Label Label // PageLabel
}

type paramBuilder func(ctx context.Context, data PageData) (views.Params, error)

// Assembler builds the parameter set for each page kind. Author profiles
// are not assembled here; they are handed to a ProfileRenderer.
type Assembler struct {
	repo      Repository
	projector PostProjector
	paths     Paths
	builders  map[PageKind]paramBuilder
}

// NewAssembler returns an Assembler reading from repo.
func NewAssembler(repo Repository, projector PostProjector, paths Paths) *Assembler {
	a := &Assembler{repo: repo, projector: projector, paths: paths}
	a.builders = map[PageKind]paramBuilder{
		PageIndex:      a.indexParams,
		PageSinglePost: a.postParams,
		PageLabel:      a.labelParams,
	}
	return a
}

// Assemble builds the parameters for kind and merges viewer under "user"
// when it is non-nil. A post whose author is missing yields ErrMissingAuthor.
func (a *Assembler) Assemble(ctx context.Context, kind PageKind, data PageData, viewer *views.UserView) (views.Params, error) {
	build, ok := a.builders[kind]
	if !ok {
		return nil, fmt.Errorf("inkwell: no parameter builder for %s page", kind)
	}
	params, err := build(ctx, data)
	if err != nil {
		return nil, err
	}
	if viewer != nil {
		params[views.KeyUser] = *viewer
	}
	return params, nil
}

// indexParams omits posts and labels entirely when there are none.
func (a *Assembler) indexParams(ctx context.Context, _ PageData) (views.Params, error) {
	posts, err := a.repo.AllPosts(ctx)
	if err != nil {
		return nil, err
	}
	labels, err := a.repo.AllLabels(ctx)
	if err != nil {
		return nil, err
	}
	params := views.Params{views.FlagIndexPage: true}
	if len(posts) > 0 {
		shaped, err := ShapePosts(ctx, a.projector, posts)
		if err != nil {
			return nil, err
		}
		params[views.KeyPosts] = shaped
	}
	if len(labels) > 0 {
		params[views.KeyLabels] = a.paths.ShapeLabels(labels)
	}
	return params, nil
}

func (a *Assembler) postParams(ctx context.Context, data PageData) (views.Params, error) {
	author, err := a.repo.AuthorOf(ctx, data.Post)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: post %q", ErrMissingAuthor, data.Post.Slug)
	}
	if err != nil {
		return nil, err
	}
	post, err := a.projector.Project(ctx, data.Post)
	if err != nil {
		return nil, err
	}
	return views.Params{
		views.KeyPost:      post,
		views.KeyAuthor:    a.paths.UserView(author),
		views.FlagPostPage: true,
	}, nil
}

// labelParams always sets posts, even to an empty list.
func (a *Assembler) labelParams(ctx context.Context, data PageData) (views.Params, error) {
	posts, err := a.repo.PostsForLabel(ctx, data.Label)
	if err != nil {
		return nil, err
	}
	shaped, err := ShapePosts(ctx, a.projector, posts)
	if err != nil {
		return nil, err
	}
	return views.Params{
		views.KeyLabel:      a.paths.LabelView(data.Label),
		views.KeyPosts:      shaped,
		views.FlagLabelPage: true,
	}, nil
}
