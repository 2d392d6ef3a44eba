package inkwell

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for an inkwell site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	BlogPath    string `yaml:"blog_path"`   // Mount point of the blog pages (default "/")

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/blog.db")
	UploadDir    string `yaml:"upload_dir"`    // Avatar storage (default "data/uploads")

	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	PostCacheTTL  time.Duration `yaml:"post_cache_ttl"` // Post cache TTL (default 5m)
	LoginAttempts int           `yaml:"login_attempts"` // Failed logins allowed per window (default 5)
	LoginWindow   time.Duration `yaml:"login_window"`   // Login limiter window (default 1m)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.UploadDir == "" {
		c.UploadDir = "data/uploads"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.LoginAttempts == 0 {
		c.LoginAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
}

// LoadConfig reads a YAML config file and applies INKWELL_* environment
// overrides on top. An empty path reads the environment only; a missing
// file is not an error.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	strs := map[string]*string{
		"INKWELL_NAME":           &c.Name,
		"INKWELL_URL":            &c.URL,
		"INKWELL_DESCRIPTION":    &c.Description,
		"INKWELL_BLOG_PATH":      &c.BlogPath,
		"INKWELL_ADDR":           &c.Addr,
		"INKWELL_DATABASE_PATH":  &c.DatabasePath,
		"INKWELL_UPLOAD_DIR":     &c.UploadDir,
		"INKWELL_SESSION_SECRET": &c.SessionSecret,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("INKWELL_COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("INKWELL_COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	if v := os.Getenv("INKWELL_POST_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("INKWELL_POST_CACHE_TTL: %w", err)
		}
		c.PostCacheTTL = d
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the logger used for request and error logging.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithTemplates overrides built-in templates by name.
func WithTemplates(templates map[string]TemplateFunc) Option {
	return func(a *App) {
		for name, fn := range templates {
			a.Templates[name] = fn
		}
	}
}

// WithStore uses an already opened Store instead of opening
// SiteConfig.DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithRepository serves the blog pages from repo. Without a Store the
// admin area is disabled.
func WithRepository(repo Repository) Option {
	return func(a *App) {
		a.repo = repo
	}
}

// WithViewerResolver replaces the session-backed viewer resolution.
func WithViewerResolver(v ViewerResolver) Option {
	return func(a *App) {
		a.viewers = v
	}
}

// WithProfileRenderer replaces the default author profile page.
func WithProfileRenderer(p ProfileRenderer) Option {
	return func(a *App) {
		a.profiles = p
	}
}
