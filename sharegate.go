// Package sharegate is a crawler-aware gateway for a news single-page app,
// built with Go, Echo, and templ. It serves Open Graph share cards to
// social-media and search crawlers, proxies the posts REST API with a
// normalizing cache, and hosts a moderation dashboard — one implementation
// of the bot-detect/fetch/render pipeline instead of one per platform.
package sharegate

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sharegate/analytics"
)

// App is the central sharegate application. It wires together the backend
// client, cache, handlers, middleware, and the analytics store.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Client *Client

	cache        *APICache
	analytics    *analytics.Store
	loginLimiter *RateLimiter
	hitLimiter   *RateLimiter
	httpClient   *http.Client
	customRoutes []func(*App)
	staticDir    string
	stopCleanup  func()
}

// New creates a sharegate App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "dist",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the client, cache, middleware, and routes, then starts
// the server. It blocks until the server stops.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// init wires dependencies without binding the listener; tests call it and
// drive the Echo instance directly.
func (a *App) init() error {
	if a.Config.APIBaseURL == "" {
		return fmt.Errorf("sharegate: APIBaseURL is required")
	}
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("sharegate: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("sharegate: SessionSecret is required")
	}

	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: a.Config.FetchTimeout}
	}
	a.cache = NewAPICache(a.Config.CacheSize, a.Config.CacheTTL, nil)
	a.Client = NewClient(a.Config.APIBaseURL, a.Config.APIToken, a.httpClient, a.cache)
	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.hitLimiter = NewRateLimiter(120, time.Minute)

	if a.Config.AnalyticsEnabled {
		store, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("sharegate: init analytics: %w", err)
		}
		if err := analytics.InitSalt(store); err != nil {
			return fmt.Errorf("sharegate: init analytics salt: %w", err)
		}
		a.analytics = store
		a.stopCleanup = store.StartCleanupScheduler(365, 24*time.Hour)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Share-card surface. The crawler rewrite in middleware.go lands here.
	// Any method reaches the handler; it answers 405 itself for non-GET.
	e.Any("/api/og", a.handleOG)
	e.GET("/api/og/card", a.handleCardImage)

	// Normalized JSON proxy for the SPA.
	e.GET("/api/posts", a.handlePosts)
	e.GET("/api/posts/:slug", a.handlePostJSON)

	// Discovery surface.
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/favicon.png", a.handleFavicon)

	// Moderation dashboard.
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/post/:id/publish/", a.handleAdminPublish)
	e.POST("/admin/post/:id/delete/", a.handleAdminDelete)
	e.GET("/admin/api/stats/", a.handleAdminStats)

	// Everything else is the SPA (humans hitting /post/... included).
	e.Static("/assets", a.staticDir+"/assets")
	e.GET("/*", a.handleSPA)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.analytics != nil {
		return a.analytics.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("sharegate: required environment variable %s is not set", key)
	}
	return v
}
