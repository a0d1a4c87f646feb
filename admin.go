package sharegate

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, AdminLoginPage(a.Config, false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, AdminLoginPage(a.Config, true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminPublish toggles a post's published flag through the backend.
func (a *App) handleAdminPublish(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id := c.Param("id")
	published := c.FormValue("published") == "true"
	if err := a.Client.SetPublished(c.Request().Context(), id, published); err != nil {
		c.Logger().Errorf("publish %s: %v", id, err)
		return a.renderAdminDashboard(c, "Backend update failed.")
	}
	msg := "unpublished"
	if published {
		msg = "published"
	}
	return a.renderAdminDashboard(c, msg)
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id := c.Param("id")
	if err := a.Client.DeletePost(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderAdminDashboard(c, "Post already gone.")
		}
		c.Logger().Errorf("delete %s: %v", id, err)
		return a.renderAdminDashboard(c, "Backend delete failed.")
	}
	return a.renderAdminDashboard(c, "deleted")
}

// handleAdminStats serves crawler analytics for the dashboard.
func (a *App) handleAdminStats(c echo.Context) error {
	if !IsAdmin(c) {
		return c.NoContent(http.StatusForbidden)
	}
	if a.analytics == nil {
		return c.JSON(http.StatusOK, map[string]any{"enabled": false})
	}
	days := queryInt(c, "days", 30)
	stats, err := a.analytics.Stats(days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	pager := NewPaginator(a.Client, ListParams{Limit: a.Config.PageLimit})
	pages := queryInt(c, "pages", 1)
	posts, err := pager.LoadAll(c.Request().Context(), pages)
	if err != nil && len(posts) == 0 {
		c.Logger().Errorf("admin list: %v", err)
		msg = strings.TrimSpace(msg + " Backend list failed.")
	}
	return Render(c, AdminDashboardPage(a.Config, posts, pager.HasMore(), msg, CsrfToken(c)))
}
