package sharegate

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// handleOG serves the share-card HTML. It always answers 200 with a card:
// upstream failure, missing slug, or an unknown post all degrade to the
// site-default card so crawlers never see a broken preview.
func (a *App) handleOG(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodOptions:
		h := c.Response().Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		return c.NoContent(http.StatusOK)
	case http.MethodGet:
	default:
		return c.JSON(http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}

	slug := c.QueryParam("slug")
	if slug == "" {
		slug = PostSlug(c.Request().URL.Path)
	}

	sharePath := c.QueryParam("originalPath")
	if sharePath == "" && slug != "" {
		sharePath = "/post/" + slug
	}
	shareURL := strings.TrimSuffix(a.Config.URL, "/") + sharePath

	var post Post
	if slug != "" {
		p, err := a.Client.GetPost(c.Request().Context(), slug)
		if err != nil {
			// Recovered locally: the default card goes out instead.
			c.Logger().Warnf("og: fetch %q: %v", slug, err)
		} else {
			post = p
		}
	}

	meta := ResolveMeta(post, shareURL, a.Config)

	c.Response().Header().Set("Cache-Control", "public, s-maxage=3600, stale-while-revalidate=86400")
	return Render(c, ShareCard(meta))
}

// handlePosts proxies the backend list endpoint as normalized JSON for the SPA.
func (a *App) handlePosts(c echo.Context) error {
	params := ListParams{
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", a.Config.PageLimit),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	}
	page, err := a.Client.ListPosts(c.Request().Context(), params)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "posts unavailable")
	}
	if page.Posts == nil {
		page.Posts = []Post{}
	}
	return c.JSON(http.StatusOK, page)
}

// handlePostJSON proxies a single post as JSON for the SPA.
func (a *App) handlePostJSON(c echo.Context) error {
	post, err := a.Client.GetPost(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "post unavailable")
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.allPosts(c)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.allPosts(c)
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

// allPosts walks the full published corpus through a fresh paginator.
// The page cap keeps a misbehaving backend from stalling the request.
func (a *App) allPosts(c echo.Context) ([]Post, error) {
	pager := NewPaginator(a.Client, ListParams{Limit: 100})
	posts, err := pager.LoadAll(c.Request().Context(), 50)
	if err != nil && len(posts) == 0 {
		return nil, err
	}
	return posts, nil
}

// handleRobots generates robots.txt dynamically using the site URL.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\n", strings.TrimSuffix(a.Config.URL, "/"))
	return c.String(http.StatusOK, body)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(filepath.Join(a.staticDir, "favicon.png"))
}

// handleSPA serves the built single-page app, falling back to index.html for
// client-side routes. API paths never reach here.
func (a *App) handleSPA(c echo.Context) error {
	reqPath := filepath.Clean("/" + c.Request().URL.Path)
	full := filepath.Join(a.staticDir, reqPath)
	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		return c.File(full)
	}
	index := filepath.Join(a.staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return echo.ErrNotFound
	}
	return c.File(index)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	// API consumers get JSON, not the styled error pages.
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		msg := http.StatusText(code)
		if ok {
			if s, isStr := he.Message.(string); isStr {
				msg = s
			}
		}
		_ = c.JSON(code, map[string]string{"error": msg})
		return
	}
	if code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, NotFoundPage(a.Config))
		return
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, ServerErrorPage(a.Config))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// recordCrawlerHit stores an analytics row for an intercepted bot request.
// Failures are logged and dropped; analytics never blocks the share card.
func (a *App) recordCrawlerHit(c echo.Context, slug string) {
	ua := c.Request().UserAgent()
	if !a.hitLimiter.Allow(c.RealIP()) {
		return
	}
	if err := a.analytics.Record(BotName(ua), c.Request().URL.Path, slug, ua, c.RealIP()); err != nil {
		c.Logger().Errorf("record crawler hit: %v", err)
	}
}

func queryInt(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
