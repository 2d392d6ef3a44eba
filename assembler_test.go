package inkwell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/inkwell/views"
)

func newTestAssembler(repo Repository) *Assembler {
	paths := NewPaths("")
	return NewAssembler(repo, newTestProjector(repo, time.Now()), paths)
}

func TestAssembleIndex(t *testing.T) {
	repo := fixtureRepo()
	params, err := newTestAssembler(repo).Assemble(context.Background(), PageIndex, PageData{}, nil)
	require.NoError(t, err)

	assert.True(t, params.Flag(views.FlagIndexPage))
	assert.Equal(t, []string{"second", "first", "orphan"}, slugs(params.Posts()))
	require.Len(t, params.Labels(), 3)
	assert.Equal(t, "Swift", params.Labels()[0].Name)
	_, hasUser := params[views.KeyUser]
	assert.False(t, hasUser, "anonymous pages carry no user key")
}

func TestAssembleIndexEmpty(t *testing.T) {
	params, err := newTestAssembler(&memRepo{}).Assemble(context.Background(), PageIndex, PageData{}, nil)
	require.NoError(t, err)

	assert.Equal(t, views.Params{views.FlagIndexPage: true}, params)
}

func TestAssembleMergesViewer(t *testing.T) {
	repo := fixtureRepo()
	viewer := NewPaths("").UserView(repo.users[0])

	params, err := newTestAssembler(repo).Assemble(context.Background(), PageIndex, PageData{}, &viewer)
	require.NoError(t, err)

	got, ok := params.User()
	require.True(t, ok)
	assert.Equal(t, "tim", got.Username)
	assert.Equal(t, "/authors/tim/", got.Link)
}

func TestAssembleMergesViewerOnEveryPage(t *testing.T) {
	repo := fixtureRepo()
	viewer := NewPaths("").UserView(repo.users[0])

	tests := []struct {
		name string
		kind PageKind
		data PageData
		keys []string
	}{
		{"index", PageIndex, PageData{}, []string{views.FlagIndexPage, views.KeyPosts, views.KeyLabels, views.KeyUser}},
		{"single post", PageSinglePost, PageData{Post: repo.posts[0]}, []string{views.KeyPost, views.KeyAuthor, views.FlagPostPage, views.KeyUser}},
		{"label", PageLabel, PageData{Label: repo.labels[0]}, []string{views.KeyLabel, views.KeyPosts, views.FlagLabelPage, views.KeyUser}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := newTestAssembler(repo).Assemble(context.Background(), tt.kind, tt.data, &viewer)
			require.NoError(t, err)

			for _, key := range tt.keys {
				assert.Contains(t, params, key)
			}
			got, ok := params.User()
			require.True(t, ok)
			assert.Equal(t, viewer, got)
			for key, value := range params {
				assert.NotContains(t, fmt.Sprintf("%#v", value), repo.users[0].PasswordHash, "value under %q", key)
			}
		})
	}
}

func TestAssembleSinglePost(t *testing.T) {
	repo := fixtureRepo()
	params, err := newTestAssembler(repo).Assemble(context.Background(), PageSinglePost, PageData{Post: repo.posts[0]}, nil)
	require.NoError(t, err)

	assert.True(t, params.Flag(views.FlagPostPage))
	post, ok := params.Post()
	require.True(t, ok)
	assert.Equal(t, "first", post.Slug)
	assert.Equal(t, "Tim", post.AuthorName)

	author, ok := params.Author()
	require.True(t, ok)
	assert.Equal(t, "tim", author.Username)
	assert.Equal(t, "writes things", author.Bio)
	assert.Nil(t, params.Posts())
}

func TestAssembleSinglePostMissingAuthor(t *testing.T) {
	repo := fixtureRepo()
	_, err := newTestAssembler(repo).Assemble(context.Background(), PageSinglePost, PageData{Post: repo.posts[2]}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAuthor))
	assert.Contains(t, err.Error(), "orphan")
}

func TestAssembleLabel(t *testing.T) {
	repo := fixtureRepo()
	params, err := newTestAssembler(repo).Assemble(context.Background(), PageLabel, PageData{Label: repo.labels[0]}, nil)
	require.NoError(t, err)

	assert.True(t, params.Flag(views.FlagLabelPage))
	label, ok := params.Label()
	require.True(t, ok)
	assert.Equal(t, "Swift", label.Name)
	assert.Equal(t, []string{"second", "first"}, slugs(params.Posts()))
}

func TestAssembleLabelWithoutPosts(t *testing.T) {
	repo := fixtureRepo()
	params, err := newTestAssembler(repo).Assemble(context.Background(), PageLabel, PageData{Label: repo.labels[2]}, nil)
	require.NoError(t, err)

	posts, present := params[views.KeyPosts]
	require.True(t, present, "label pages always carry posts")
	assert.Empty(t, posts)
	assert.NotNil(t, params.Posts())
}

func TestAssembleUnknownKind(t *testing.T) {
	_, err := newTestAssembler(fixtureRepo()).Assemble(context.Background(), PageAuthorProfile, PageData{}, nil)
	assert.Error(t, err)
}

func TestAssembleRepositoryError(t *testing.T) {
	repo := fixtureRepo()
	repo.err = errors.New("db closed")

	_, err := newTestAssembler(repo).Assemble(context.Background(), PageIndex, PageData{}, nil)
	assert.EqualError(t, err, "db closed")
}

func TestUserViewCarriesNoCredentials(t *testing.T) {
	typ := reflect.TypeOf(views.UserView{})
	for i := 0; i < typ.NumField(); i++ {
		name := strings.ToLower(typ.Field(i).Name)
		assert.NotContains(t, name, "password")
		assert.NotContains(t, name, "hash")
	}

	repo := fixtureRepo()
	b, err := json.Marshal(NewPaths("").UserView(repo.users[0]))
	require.NoError(t, err)
	assert.NotContains(t, string(b), repo.users[0].PasswordHash)

	b, err = json.Marshal(repo.users[0])
	require.NoError(t, err)
	assert.NotContains(t, string(b), "PasswordHash")
}

func TestPageKindTemplates(t *testing.T) {
	assert.Equal(t, "blog/blog", PageIndex.Template())
	assert.Equal(t, "blog/blogpost", PageSinglePost.Template())
	assert.Equal(t, "blog/label", PageLabel.Template())
	assert.Empty(t, PageAuthorProfile.Template())
	assert.Equal(t, "author", PageAuthorProfile.String())
}
