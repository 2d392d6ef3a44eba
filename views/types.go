package views

import "time"

// Site holds site-wide settings every template reads from.
// Nothing in a template is hardcoded beyond markup.
type Site struct {
	Name        string
	URL         string // canonical base URL
	Description string
	Home        string // path of the blog index, e.g. "/" or "/blog/"
	Admin       string // path of the admin dashboard
}

// Params is the named parameter set assembled for a single render.
// It lives for exactly one request and is never persisted.
type Params map[string]any

// Parameter keys shared by the assembler and the templates.
const (
	KeyPosts       = "posts"
	KeyLabels      = "labels"
	KeyPost        = "post"
	KeyLabel       = "label"
	KeyAuthor      = "author"
	KeyUser        = "user"
	KeyProfileUser = "profileUser"
	KeyCSRF        = "csrf"
	KeyMessage     = "message"
	KeyEditPost    = "editPost"

	FlagIndexPage   = "blogIndexPage"
	FlagPostPage    = "blogPostPage"
	FlagLabelPage   = "labelPage"
	FlagProfilePage = "profilePage"
	FlagMyProfile   = "myProfile"
	FlagLoginError  = "loginError"
)

// UserView is the display-safe projection of a user. It deliberately has
// no credential fields, so a password hash can never reach a template.
type UserView struct {
	ID        string
	Username  string
	Name      string
	Bio       string
	AvatarURL string
	Link      string
}

// LabelView is a label ready for display.
type LabelView struct {
	ID   string
	Name string
	Link string
}

// PostView is a post projected for display, including the computed extras
// templates need (snippets, formatted dates, cached author name).
type PostView struct {
	ID             string
	Slug           string
	Title          string
	Content        string
	Link           string
	Created        time.Time
	CreatedDate    string
	CreatedAgo     string
	ShortSnippet   string
	LongSnippet    string
	AuthorName     string
	AuthorUsername string
	AuthorLink     string
	Labels         []LabelView
	Published      bool
}

// Posts returns the shaped posts, or nil when the key is absent.
func (p Params) Posts() []PostView {
	v, _ := p[KeyPosts].([]PostView)
	return v
}

// Labels returns the label list, or nil when the key is absent.
func (p Params) Labels() []LabelView {
	v, _ := p[KeyLabels].([]LabelView)
	return v
}

func (p Params) Post() (PostView, bool) {
	v, ok := p[KeyPost].(PostView)
	return v, ok
}

func (p Params) Label() (LabelView, bool) {
	v, ok := p[KeyLabel].(LabelView)
	return v, ok
}

func (p Params) Author() (UserView, bool) {
	v, ok := p[KeyAuthor].(UserView)
	return v, ok
}

func (p Params) ProfileUser() (UserView, bool) {
	v, ok := p[KeyProfileUser].(UserView)
	return v, ok
}

// User returns the resolved viewer, if any.
func (p Params) User() (UserView, bool) {
	v, ok := p[KeyUser].(UserView)
	return v, ok
}

// String returns a string parameter or "".
func (p Params) String(key string) string {
	v, _ := p[key].(string)
	return v
}

// Flag reports whether a boolean marker is set.
func (p Params) Flag(key string) bool {
	v, _ := p[key].(bool)
	return v
}
