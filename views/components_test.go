package views

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSite = Site{Name: "Test Blog", URL: "https://example.com", Home: "/", Admin: "/admin/"}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func samplePost() PostView {
	return PostView{
		ID:           "p1",
		Slug:         "hello",
		Title:        "Hello <World>",
		Content:      "Some **bold** text.\n\n<script>alert(1)</script>",
		Link:         "/posts/hello/",
		Created:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedDate:  "March 1, 2024",
		ShortSnippet: "Some bold text.",
		LongSnippet:  "Some bold text.",
		AuthorName:   "Tim",
		AuthorLink:   "/authors/tim/",
		Labels:       []LabelView{{ID: "l1", Name: "Go", Link: "/labels/Go/"}},
		Published:    true,
	}
}

func TestBlogEmpty(t *testing.T) {
	out := render(t, Blog(testSite, Params{FlagIndexPage: true}))
	assert.Contains(t, out, "No posts yet.")
	assert.NotContains(t, out, "Signed in as")
}

func TestBlogListsPostsAndViewer(t *testing.T) {
	out := render(t, Blog(testSite, Params{
		KeyPosts:  []PostView{samplePost()},
		KeyLabels: []LabelView{{Name: "Go", Link: "/labels/Go/"}},
		KeyUser:   UserView{Name: "Ada"},
	}))
	assert.Contains(t, out, `href="/posts/hello/"`)
	assert.Contains(t, out, "Hello &lt;World&gt;")
	assert.Contains(t, out, "Signed in as")
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, `href="/labels/Go/"`)
}

func TestBlogPostRendersSanitizedMarkdown(t *testing.T) {
	out := render(t, BlogPost(testSite, Params{
		KeyPost:   samplePost(),
		KeyAuthor: UserView{Name: "Tim", Link: "/authors/tim/"},
	}))
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, `"@type":"BlogPosting"`)
	assert.Contains(t, out, `href="/authors/tim/"`)
}

func TestLabelEmpty(t *testing.T) {
	out := render(t, Label(testSite, Params{KeyLabel: LabelView{Name: "Go"}, KeyPosts: []PostView{}}))
	assert.Contains(t, out, "Posts labelled Go")
	assert.Contains(t, out, "No posts with this label.")
}

func TestProfileUploadFormOnlyForOwner(t *testing.T) {
	profile := UserView{Username: "tim", Name: "Tim", Bio: "Writes."}

	out := render(t, Profile(testSite, Params{KeyProfileUser: profile}))
	assert.Contains(t, out, "@tim")
	assert.NotContains(t, out, "Upload avatar")

	out = render(t, Profile(testSite, Params{KeyProfileUser: profile, FlagMyProfile: true, KeyCSRF: "tok"}))
	assert.Contains(t, out, "Upload avatar")
	assert.Contains(t, out, `value="tok"`)
}

func TestLoginError(t *testing.T) {
	assert.NotContains(t, render(t, Login(testSite, Params{})), "Invalid username")
	assert.Contains(t, render(t, Login(testSite, Params{FlagLoginError: true})), "Invalid username")
}

func TestDashboardEditor(t *testing.T) {
	post := samplePost()
	out := render(t, Dashboard(testSite, Params{KeyPosts: []PostView{post}, KeyEditPost: post, KeyMessage: "Saved."}))
	assert.Contains(t, out, "Saved.")
	assert.Contains(t, out, `action="/admin/post/hello/delete/"`)
	assert.Contains(t, out, `name="labels" value="Go"`)
	assert.Contains(t, out, "&lt;script&gt;", "editor content is escaped")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Title Some bold & italic text.", PlainText("# Title\n\nSome **bold** & *italic*   text."))
}

func TestBlogPostingJsonLDEscapesScript(t *testing.T) {
	post := samplePost()
	post.Title = "</script><b>"
	out := BlogPostingJsonLD(testSite, post)
	assert.NotContains(t, out, "</script>")
	assert.Contains(t, out, `"url":"https://example.com/posts/hello/"`)
	assert.Contains(t, out, `"keywords":"Go"`)
}
