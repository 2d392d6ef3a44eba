package inkwell

import (
	"net/url"
	"strings"
)

// Paths builds the public URLs of blog pages under a configurable root.
type Paths struct {
	root string
}

// NewPaths returns Paths rooted at blogPath. An empty blogPath mounts the
// blog at "/".
func NewPaths(blogPath string) Paths {
	p := strings.Trim(blogPath, "/")
	if p == "" {
		return Paths{root: "/"}
	}
	return Paths{root: "/" + p + "/"}
}

// Prefix is the route group prefix for the blog ("" when mounted at "/").
func (p Paths) Prefix() string {
	return strings.TrimSuffix(p.root, "/")
}

func (p Paths) Index() string {
	return p.root
}

func (p Paths) Post(slug string) string {
	return p.root + "posts/" + url.PathEscape(slug) + "/"
}

func (p Paths) Label(name string) string {
	return p.root + "labels/" + url.PathEscape(name) + "/"
}

func (p Paths) Author(username string) string {
	return p.root + "authors/" + url.PathEscape(username) + "/"
}

func (p Paths) Admin() string {
	return "/admin/"
}
