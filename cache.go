package inkwell

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Repository is the read side of persistence the blog pages consume.
// Lookups return ErrNotFound for unknown identifiers.
type Repository interface {
	AllPosts(ctx context.Context) ([]Post, error)
	AllLabels(ctx context.Context) ([]Label, error)
	PostsForLabel(ctx context.Context, label Label) ([]Post, error)
	PostsByAuthor(ctx context.Context, author User) ([]Post, error)
	AuthorOf(ctx context.Context, post Post) (User, error)

	PostBySlug(ctx context.Context, slug string) (Post, error)
	LabelByID(ctx context.Context, id string) (Label, error)
	LabelByName(ctx context.Context, name string) (Label, error)
	UserByID(ctx context.Context, id string) (User, error)
	UserByUsername(ctx context.Context, username string) (User, error)
}

// snapshot is one consistent load of published content.
type snapshot struct {
	posts  []Post
	labels []Label

	postsBySlug  map[string]Post
	labelsByID   map[string]Label
	labelsByName map[string]Label
	usersByID    map[string]User
	usersByName  map[string]User
}

// PostCache is an in-memory, TTL-bounded view of published posts, labels
// and users. It implements Repository on top of a Store.
type PostCache struct {
	mu      sync.RWMutex
	snap    *snapshot
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.snap != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts(ctx)
	if err != nil {
		return err
	}
	labels, err := c.store.ListLabels(ctx)
	if err != nil {
		return err
	}
	users, err := c.store.ListUsers(ctx)
	if err != nil {
		return err
	}
	snap := &snapshot{
		posts:        posts,
		labels:       labels,
		postsBySlug:  make(map[string]Post, len(posts)),
		labelsByID:   make(map[string]Label, len(labels)),
		labelsByName: make(map[string]Label, len(labels)),
		usersByID:    make(map[string]User, len(users)),
		usersByName:  make(map[string]User, len(users)),
	}
	for _, p := range posts {
		snap.postsBySlug[p.Slug] = p
	}
	for _, l := range labels {
		snap.labelsByID[l.ID] = l
		snap.labelsByName[normalizeLabel(l.Name)] = l
	}
	for _, u := range users {
		snap.usersByID[u.ID] = u
		snap.usersByName[u.Username] = u
	}
	c.snap = snap
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the current snapshot after ensuring it is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) (*snapshot, error) {
	c.mu.RLock()
	if c.valid() {
		snap := c.snap
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c.snap, nil
}

// AllPosts returns every published post in storage order.
func (c *PostCache) AllPosts(ctx context.Context) ([]Post, error) {
	snap, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return snap.posts, nil
}

// AllLabels returns every label in name order.
func (c *PostCache) AllLabels(ctx context.Context) ([]Label, error) {
	snap, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return snap.labels, nil
}

// PostsForLabel scans the published posts for those carrying label.
// The result is non-nil even when nothing matches.
func (c *PostCache) PostsForLabel(ctx context.Context, label Label) ([]Post, error) {
	snap, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	posts := []Post{}
	for _, p := range snap.posts {
		for _, id := range p.LabelIDs {
			if id == label.ID {
				posts = append(posts, p)
				break
			}
		}
	}
	return posts, nil
}

// PostsByAuthor returns the published posts written by author.
func (c *PostCache) PostsByAuthor(ctx context.Context, author User) ([]Post, error) {
	snap, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	var posts []Post
	for _, p := range snap.posts {
		if p.AuthorID == author.ID {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// AuthorOf returns the user who wrote post.
func (c *PostCache) AuthorOf(ctx context.Context, post Post) (User, error) {
	return c.UserByID(ctx, post.AuthorID)
}

func (c *PostCache) PostBySlug(ctx context.Context, slug string) (Post, error) {
	snap, err := c.ensureLoaded(ctx)
	if err != nil {
		return Post{}, err
	}
	p, ok := snap.postsBySlug[slug]
	if !ok {
		return Post{}, ErrNotFound
	}
	return p, nil
}

func (c *PostCache) LabelByID(ctx context.Context, id string) (Label, error) {
	snap, err := c.ensureLoaded(ctx)
	if err != nil {
		return Label{}, err
	}
	l, ok := snap.labelsByID[id]
	if !ok {
		return Label{}, ErrNotFound
	}
	return l, nil
}

// LabelByName looks a label up case-insensitively.
func (c *PostCache) LabelByName(ctx context.Context, name string) (Label, error) {
	snap, err := c.ensureLoaded(ctx)
	if err != nil {
		return Label{}, err
	}
	l, ok := snap.labelsByName[normalizeLabel(name)]
	if !ok {
		return Label{}, ErrNotFound
	}
	return l, nil
}

func (c *PostCache) UserByID(ctx context.Context, id string) (User, error) {
	snap, err := c.ensureLoaded(ctx)
	if err != nil {
		return User{}, err
	}
	u, ok := snap.usersByID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (c *PostCache) UserByUsername(ctx context.Context, username string) (User, error) {
	snap, err := c.ensureLoaded(ctx)
	if err != nil {
		return User{}, err
	}
	u, ok := snap.usersByName[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func normalizeLabel(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
