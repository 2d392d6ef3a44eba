package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// layout wraps body in the shared page chrome. The navigation shows the
// viewer when one was resolved for this request.
func layout(site Site, title string, p Params, body func(ctx context.Context, h *htmlWriter) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`)
		if title != "" && title != site.Name {
			h.text(title)
			h.raw(" | ")
		}
		h.text(site.Name)
		h.raw(`</title>`)
		if site.Description != "" {
			h.raw(`<meta name="description" content="`, h.attr(site.Description), `">`)
		}
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml">`,
			`</head><body><header><nav><a href="`, h.attr(site.Home), `">`)
		h.text(site.Name)
		h.raw(`</a>`)
		if u, ok := p.User(); ok {
			h.raw(` <span class="viewer">Signed in as <a href="`, h.attr(site.Admin), `">`)
			h.text(u.Name)
			h.raw(`</a></span>`)
		}
		h.raw(`</nav></header><main>`)
		if h.err != nil {
			return h.err
		}
		if err := body(ctx, h); err != nil {
			return err
		}
		h.raw(`</main></body></html>`)
		return h.err
	})
}

func postList(h *htmlWriter, posts []PostView) {
	h.raw(`<ul class="posts">`)
	for _, post := range posts {
		h.raw(`<li><article><h2><a href="`, h.attr(post.Link), `">`)
		h.text(post.Title)
		h.raw(`</a></h2><p class="meta"><time datetime="`, h.attr(post.Created.Format("2006-01-02")), `">`)
		h.text(post.CreatedDate)
		h.raw(`</time>`)
		if post.AuthorName != "" {
			h.raw(` by <a href="`, h.attr(post.AuthorLink), `">`)
			h.text(post.AuthorName)
			h.raw(`</a>`)
		}
		h.raw(`</p><p>`)
		h.text(post.LongSnippet)
		h.raw(`</p>`)
		labelList(h, post.Labels)
		h.raw(`</article></li>`)
	}
	h.raw(`</ul>`)
}

func labelList(h *htmlWriter, labels []LabelView) {
	if len(labels) == 0 {
		return
	}
	h.raw(`<ul class="labels">`)
	for _, l := range labels {
		h.raw(`<li><a href="`, h.attr(l.Link), `">`)
		h.text(l.Name)
		h.raw(`</a></li>`)
	}
	h.raw(`</ul>`)
}

// Blog renders the index page ("blog/blog").
func Blog(site Site, p Params) templ.Component {
	return layout(site, site.Name, p, func(ctx context.Context, h *htmlWriter) error {
		posts := p.Posts()
		if len(posts) == 0 {
			h.raw(`<p class="empty">No posts yet.</p>`)
		} else {
			postList(h, posts)
		}
		if labels := p.Labels(); len(labels) > 0 {
			h.raw(`<aside><h3>Labels</h3>`)
			labelList(h, labels)
			h.raw(`</aside>`)
		}
		return h.err
	})
}

// BlogPost renders a single post ("blog/blogpost").
func BlogPost(site Site, p Params) templ.Component {
	post, _ := p.Post()
	author, _ := p.Author()
	return layout(site, post.Title, p, func(ctx context.Context, h *htmlWriter) error {
		h.raw(`<script type="application/ld+json">`, BlogPostingJsonLD(site, post), `</script>`)
		h.raw(`<article><h1>`)
		h.text(post.Title)
		h.raw(`</h1><p class="meta"><time datetime="`, h.attr(post.Created.Format("2006-01-02")), `">`)
		h.text(post.CreatedDate)
		h.raw(`</time> by <a href="`, h.attr(author.Link), `">`)
		h.text(author.Name)
		h.raw(`</a></p>`)
		labelList(h, post.Labels)
		h.raw(`<div class="content">`)
		if h.err != nil {
			return h.err
		}
		if err := Markdown(post.Content).Render(ctx, h.w); err != nil {
			return err
		}
		h.raw(`</div></article>`)
		return h.err
	})
}

// Label renders the posts carrying one label ("blog/label").
func Label(site Site, p Params) templ.Component {
	label, _ := p.Label()
	return layout(site, label.Name, p, func(ctx context.Context, h *htmlWriter) error {
		h.raw(`<h1>Posts labelled `)
		h.text(label.Name)
		h.raw(`</h1>`)
		if posts := p.Posts(); len(posts) > 0 {
			postList(h, posts)
		} else {
			h.raw(`<p class="empty">No posts with this label.</p>`)
		}
		return h.err
	})
}

// Profile renders an author page ("blog/profile").
func Profile(site Site, p Params) templ.Component {
	author, _ := p.ProfileUser()
	return layout(site, author.Name, p, func(ctx context.Context, h *htmlWriter) error {
		h.raw(`<section class="profile">`)
		if author.AvatarURL != "" {
			h.raw(`<img class="avatar" src="`, h.attr(author.AvatarURL), `" alt="" width="128" height="128">`)
		}
		h.raw(`<h1>`)
		h.text(author.Name)
		h.raw(`</h1><p class="username">@`)
		h.text(author.Username)
		h.raw(`</p>`)
		if author.Bio != "" {
			h.raw(`<p class="bio">`)
			h.text(author.Bio)
			h.raw(`</p>`)
		}
		if p.Flag(FlagMyProfile) {
			h.raw(`<form method="post" action="`, h.attr(site.Admin), `avatar/" enctype="multipart/form-data">`,
				`<input type="hidden" name="_csrf" value="`, h.attr(p.String(KeyCSRF)), `">`,
				`<input type="file" name="avatar" accept="image/*"><button type="submit">Upload avatar</button></form>`)
		}
		h.raw(`</section>`)
		if posts := p.Posts(); len(posts) > 0 {
			postList(h, posts)
		}
		return h.err
	})
}

// Login renders the admin sign-in form.
func Login(site Site, p Params) templ.Component {
	return layout(site, "Sign in", p, func(ctx context.Context, h *htmlWriter) error {
		h.raw(`<h1>Sign in</h1>`)
		if p.Flag(FlagLoginError) {
			h.raw(`<p class="error">Invalid username or password.</p>`)
		}
		h.raw(`<form method="post" action="`, h.attr(site.Admin), `login/">`,
			`<input type="hidden" name="_csrf" value="`, h.attr(p.String(KeyCSRF)), `">`,
			`<label>Username <input name="username" autocomplete="username"></label>`,
			`<label>Password <input type="password" name="password" autocomplete="current-password"></label>`,
			`<button type="submit">Sign in</button></form>`)
		return h.err
	})
}

// Dashboard renders the admin post list and editor.
func Dashboard(site Site, p Params) templ.Component {
	return layout(site, "Admin", p, func(ctx context.Context, h *htmlWriter) error {
		csrf := h.attr(p.String(KeyCSRF))
		h.raw(`<h1>Posts</h1>`)
		if msg := p.String(KeyMessage); msg != "" {
			h.raw(`<p class="message">`)
			h.text(msg)
			h.raw(`</p>`)
		}
		h.raw(`<p><a href="`, h.attr(site.Admin), `profile/">Your profile</a></p>`,
			`<form method="post" action="`, h.attr(site.Admin), `logout/"><input type="hidden" name="_csrf" value="`, csrf,
			`"><button type="submit">Sign out</button></form>`)
		h.raw(`<table><thead><tr><th>Title</th><th>Created</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, post := range p.Posts() {
			status := "draft"
			if post.Published {
				status = "published"
			}
			h.raw(`<tr><td><a href="`, h.attr(site.Admin), `post/`, h.attr(post.Slug), `/">`)
			h.text(post.Title)
			h.raw(`</a></td><td>`)
			h.text(post.CreatedDate)
			h.raw(`</td><td>`, status, `</td><td><form method="post" action="`, h.attr(site.Admin), `post/`, h.attr(post.Slug),
				`/delete/"><input type="hidden" name="_csrf" value="`, csrf, `"><button type="submit">Delete</button></form></td></tr>`)
		}
		h.raw(`</tbody></table>`)

		edit, _ := p[KeyEditPost].(PostView)
		checked := ""
		if edit.Published || edit.ID == "" {
			checked = " checked"
		}
		h.raw(`<h2>Editor</h2><form method="post" action="`, h.attr(site.Admin), `save/">`,
			`<input type="hidden" name="_csrf" value="`, csrf, `">`,
			`<input type="hidden" name="id" value="`, h.attr(edit.ID), `">`,
			`<label>Title <input name="title" value="`, h.attr(edit.Title), `"></label>`,
			`<label>Slug <input name="slug" value="`, h.attr(edit.Slug), `"></label>`,
			`<label>Labels <input name="labels" value="`, h.attr(JoinLabels(edit.Labels)), `"></label>`,
			`<label>Content <textarea name="content" rows="20">`)
		h.text(edit.Content)
		h.raw(`</textarea></label>`,
			`<label><input type="checkbox" name="published" value="1"`, checked, `> Published</label>`,
			`<button type="submit">Save</button></form>`)
		return h.err
	})
}

// NotFound renders the 404 page.
func NotFound(site Site, p Params) templ.Component {
	return layout(site, "Not found", p, func(ctx context.Context, h *htmlWriter) error {
		h.raw(`<h1>Page not found</h1><p><a href="`, h.attr(site.Home), `">Back to the blog</a></p>`)
		return h.err
	})
}

// ServerError renders the 5xx page.
func ServerError(site Site, p Params) templ.Component {
	return layout(site, "Error", p, func(ctx context.Context, h *htmlWriter) error {
		h.raw(`<h1>Something went wrong</h1><p>Please try again later.</p>`)
		return h.err
	})
}
