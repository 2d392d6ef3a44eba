package inkwell

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested post, label or user does not exist.
var ErrNotFound = errors.New("inkwell: not found")

// ErrMissingAuthor is returned when a post's author record cannot be found.
// A post page cannot render without its author.
var ErrMissingAuthor = errors.New("inkwell: post author not found")

// ErrSlugTaken is returned when saving a post whose slug belongs to
// another post.
var ErrSlugTaken = errors.New("inkwell: slug already in use")

// Post is the core content type stored in SQLite. Created is set once on
// first save and never changes afterwards.
type Post struct {
	ID        string
	Slug      string
	Title     string
	Content   string
	Created   time.Time
	LabelIDs  []string
	AuthorID  string
	Published bool
}

// Label is a tag attachable to posts. Names are unique.
type Label struct {
	ID   string
	Name string
}

// User is a blog author and, when signed in, the request viewer.
type User struct {
	ID           string
	Username     string
	Name         string
	Bio          string
	Avatar       string // public path of the avatar image, if any
	PasswordHash string `json:"-"` // never rendered; see UserView
	Created      time.Time
}

// PageKind is the closed set of public pages the blog renders.
type PageKind int

const (
	PageIndex PageKind = iota
	PageSinglePost
	PageLabel
	PageAuthorProfile
)

func (k PageKind) String() string {
	switch k {
	case PageIndex:
		return "index"
	case PageSinglePost:
		return "post"
	case PageLabel:
		return "label"
	case PageAuthorProfile:
		return "author"
	}
	return "unknown"
}

// Template names handed to the renderer.
const (
	TemplateIndex       = "blog/blog"
	TemplatePost        = "blog/blogpost"
	TemplateLabel       = "blog/label"
	TemplateProfile     = "blog/profile"
	TemplateLogin       = "admin/login"
	TemplateDashboard   = "admin/dashboard"
	TemplateNotFound    = "error/404"
	TemplateServerError = "error/500"
)

// Template returns the template a page kind renders with. Author profiles
// are delegated to the ProfileRenderer and have no template of their own.
func (k PageKind) Template() string {
	switch k {
	case PageIndex:
		return TemplateIndex
	case PageSinglePost:
		return TemplatePost
	case PageLabel:
		return TemplateLabel
	}
	return ""
}
