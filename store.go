package inkwell

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding posts, labels and users.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// foreign_keys and busy_timeout are per connection, so they go in the
	// DSN where every pooled connection picks them up.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed while the admin writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    bio TEXT NOT NULL DEFAULT '',
    avatar TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    author_id TEXT NOT NULL,
    created TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS labels (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE COLLATE NOCASE
);
CREATE TABLE IF NOT EXISTS post_labels (
    post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    label_id TEXT NOT NULL REFERENCES labels(id) ON DELETE CASCADE,
    PRIMARY KEY (post_id, label_id)
);
`)
	return err
}

const postColumns = `id, slug, title, content, author_id, created, published`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (Post, error) {
	var p Post
	var created string
	var published int
	if err := r.Scan(&p.ID, &p.Slug, &p.Title, &p.Content, &p.AuthorID, &created, &published); err != nil {
		return Post{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Post{}, fmt.Errorf("post %s: parse created: %w", p.ID, err)
	}
	p.Created = t
	p.Published = published == 1
	return p, nil
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachLabelIDs(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachLabelIDs fills LabelIDs for posts with a single query.
func (s *Store) attachLabelIDs(ctx context.Context, posts []Post) error {
	if len(posts) == 0 {
		return nil
	}
	index := make(map[string]int, len(posts))
	for i, p := range posts {
		index[p.ID] = i
	}
	rows, err := s.db.QueryContext(ctx, `SELECT pl.post_id, pl.label_id FROM post_labels pl JOIN labels l ON l.id = pl.label_id ORDER BY l.name`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postID, labelID string
		if err := rows.Scan(&postID, &labelID); err != nil {
			return err
		}
		if i, ok := index[postID]; ok {
			posts[i].LabelIDs = append(posts[i].LabelIDs, labelID)
		}
	}
	return rows.Err()
}

// ListPosts returns all published posts. Order is unspecified; callers
// shape collections for display.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE published = 1`)
}

// ListAllPosts returns every post, drafts included, newest first (for admin).
func (s *Store) ListAllPosts(ctx context.Context) ([]Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created DESC, id`)
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(ctx context.Context, slug string) (Post, error) {
	return s.getPost(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug)
}

// GetPostAny returns a post by slug regardless of published status (for admin).
func (s *Store) GetPostAny(ctx context.Context, slug string) (Post, error) {
	return s.getPost(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
}

// GetPostByID returns a post by ID regardless of its published state.
func (s *Store) GetPostByID(ctx context.Context, id string) (Post, error) {
	return s.getPost(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
}

func (s *Store) getPost(ctx context.Context, query string, args ...any) (Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	posts := []Post{p}
	if err := s.attachLabelIDs(ctx, posts); err != nil {
		return Post{}, err
	}
	return posts[0], nil
}

// SavePost upserts a post and replaces its labels with labelNames, creating
// labels that do not exist yet. A new post gets an ID and, if unset, a
// creation time; an existing post keeps its original creation time.
func (s *Store) SavePost(ctx context.Context, p Post, labelNames []string) (Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Created.IsZero() {
		p.Created = time.Now().UTC()
	}
	published := 0
	if p.Published {
		published = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Post{}, err
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT id FROM posts WHERE slug = ?`, p.Slug).Scan(&owner)
	switch {
	case err == nil && owner != p.ID:
		return Post{}, ErrSlugTaken
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return Post{}, err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO posts (id, slug, title, content, author_id, created, published) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET slug = excluded.slug, title = excluded.title, content = excluded.content, published = excluded.published`,
		p.ID, p.Slug, p.Title, p.Content, p.AuthorID, p.Created.Format(time.RFC3339Nano), published)
	if err != nil {
		return Post{}, fmt.Errorf("save post: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_labels WHERE post_id = ?`, p.ID); err != nil {
		return Post{}, err
	}
	p.LabelIDs = nil
	for _, name := range NormalizeLabels(labelNames) {
		id, err := ensureLabel(ctx, tx, name)
		if err != nil {
			return Post{}, err
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO post_labels (post_id, label_id) VALUES (?, ?)`, p.ID, id); err != nil {
			return Post{}, err
		}
		p.LabelIDs = append(p.LabelIDs, id)
	}
	if err := tx.Commit(); err != nil {
		return Post{}, err
	}

	// Re-read so the caller sees the stored creation time on updates.
	return s.GetPostByID(ctx, p.ID)
}

func ensureLabel(ctx context.Context, tx *sql.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM labels WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id = uuid.NewString()
	if _, err := tx.ExecContext(ctx, `INSERT INTO labels (id, name) VALUES (?, ?)`, id, name); err != nil {
		return "", fmt.Errorf("create label %q: %w", name, err)
	}
	return id, nil
}

// DeletePost removes a post by slug. Its label links go with it.
func (s *Store) DeletePost(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE slug = ?`, slug)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLabels returns every label in name order.
func (s *Store) ListLabels(ctx context.Context) ([]Label, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM labels ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []Label
	for rows.Next() {
		var l Label
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// PostsForLabel returns the published posts carrying label.
func (s *Store) PostsForLabel(ctx context.Context, label Label) ([]Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts
WHERE published = 1 AND id IN (SELECT post_id FROM post_labels WHERE label_id = ?)`, label.ID)
}

const userColumns = `id, username, name, bio, avatar, password_hash, created`

func scanUser(r rowScanner) (User, error) {
	var u User
	var created string
	if err := r.Scan(&u.ID, &u.Username, &u.Name, &u.Bio, &u.Avatar, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return User{}, fmt.Errorf("user %s: parse created: %w", u.ID, err)
	}
	u.Created = t
	return u, nil
}

// CreateUser stores a new user, hashing password with bcrypt.
func (s *Store) CreateUser(ctx context.Context, u User, password string) (User, error) {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return User{}, errors.New("create user: username is required")
	}
	if password == "" {
		return User{}, errors.New("create user: password is required")
	}
	if u.Name == "" {
		u.Name = u.Username
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("create user: hash password: %w", err)
	}
	u.ID = uuid.NewString()
	u.PasswordHash = string(hash)
	u.Created = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Name, u.Bio, u.Avatar, u.PasswordHash, u.Created.Format(time.RFC3339Nano))
	if err != nil {
		return User{}, fmt.Errorf("create user %q: %w", u.Username, err)
	}
	return u, nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetUserByUsername returns a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// ListUsers returns every user in username order.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Authenticate checks a username/password pair. Any mismatch, including an
// unknown username, returns ErrNotFound.
func (s *Store) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

// SetAvatar records the public avatar path for a user.
func (s *Store) SetAvatar(ctx context.Context, userID, avatar string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET avatar = ? WHERE id = ?`, avatar, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
