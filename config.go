package sharegate

import (
	"net/http"
	"time"
)

// SiteConfig holds all configuration for a sharegate gateway.
type SiteConfig struct {
	Name        string // Site name used as og:site_name (default "Newsroom")
	URL         string // Canonical public URL (default "http://localhost:3000")
	Description string // Default share-card description
	Locale      string // og:locale (default "en_US")

	Addr       string // Listen address (default ":3000")
	APIBaseURL string // Required: backend REST API base URL
	APIToken   string // Bearer token for backend admin mutations

	AdminPassword string // Required: moderation dashboard password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	FetchTimeout time.Duration // Backend request timeout (default 10s)
	CacheTTL     time.Duration // API cache TTL (default 5min)
	CacheSize    int           // API cache capacity (default 100 entries)
	PageLimit    int           // Default posts-per-page (default 20)

	AnalyticsEnabled      bool   // Record crawler hits (default false)
	AnalyticsDatabasePath string // Analytics SQLite path (default "data/crawlers.db")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Newsroom"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Locale == "" {
		c.Locale = "en_US"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.CacheSize == 0 {
		c.CacheSize = 100
	}
	if c.PageLimit == 0 {
		c.PageLimit = 20
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/crawlers.db"
	}
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

// WithStaticDir sets the directory holding the built SPA (default "dist").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithHTTPClient substitutes the HTTP client used for backend and image
// fetches. Tests use this to point the gateway at an httptest server.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}
