package sharegate

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
)

// page wraps body markup in the shared document shell.
func page(title string, cfg SiteConfig, body func(*bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
		buf.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		buf.WriteString("<meta name=\"robots\" content=\"noindex\">\n")
		buf.WriteString("<title>" + EscapeHTML(title) + " · " + EscapeHTML(cfg.Name) + "</title>\n")
		buf.WriteString("<style>body{font-family:sans-serif;max-width:60rem;margin:2rem auto;padding:0 1rem}table{border-collapse:collapse;width:100%}td,th{border-bottom:1px solid #ddd;padding:.4rem;text-align:left}.msg{background:#fffae5;padding:.5rem 1rem}</style>\n")
		buf.WriteString("</head>\n<body>\n")
		body(&buf)
		buf.WriteString("</body>\n</html>\n")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// AdminLoginPage renders the moderation login form.
func AdminLoginPage(cfg SiteConfig, showError bool, csrfToken string) templ.Component {
	return page("Moderation login", cfg, func(buf *bytes.Buffer) {
		buf.WriteString("<h1>" + EscapeHTML(cfg.Name) + " moderation</h1>\n")
		if showError {
			buf.WriteString("<p class=\"msg\">Wrong password.</p>\n")
		}
		buf.WriteString("<form method=\"post\" action=\"/admin/login/\">\n")
		buf.WriteString("<input type=\"hidden\" name=\"_csrf\" value=\"" + EscapeHTML(csrfToken) + "\">\n")
		buf.WriteString("<label>Password <input type=\"password\" name=\"password\" autofocus></label>\n")
		buf.WriteString("<button type=\"submit\">Log in</button>\n</form>\n")
	})
}

// AdminDashboardPage renders the post moderation table.
func AdminDashboardPage(cfg SiteConfig, posts []Post, hasMore bool, msg, csrfToken string) templ.Component {
	return page("Moderation", cfg, func(buf *bytes.Buffer) {
		buf.WriteString("<h1>Posts</h1>\n")
		if msg != "" {
			buf.WriteString("<p class=\"msg\">" + EscapeHTML(msg) + "</p>\n")
		}
		buf.WriteString("<form method=\"post\" action=\"/admin/logout/\"><input type=\"hidden\" name=\"_csrf\" value=\"" + EscapeHTML(csrfToken) + "\"><button type=\"submit\">Log out</button></form>\n")
		buf.WriteString("<table>\n<tr><th>Title</th><th>Category</th><th>Published</th><th></th></tr>\n")
		for _, p := range posts {
			buf.WriteString("<tr><td><a href=\"/post/" + EscapeHTML(p.Slug) + "\">" + EscapeHTML(p.Title) + "</a></td>")
			buf.WriteString("<td>" + EscapeHTML(p.Category) + "</td>")
			if p.Published {
				buf.WriteString("<td>yes</td><td>")
				writeToggleForm(buf, p.ID, false, "Unpublish", csrfToken)
			} else {
				buf.WriteString("<td>no</td><td>")
				writeToggleForm(buf, p.ID, true, "Publish", csrfToken)
			}
			buf.WriteString("<form method=\"post\" action=\"/admin/post/" + EscapeHTML(p.ID) + "/delete/\"><input type=\"hidden\" name=\"_csrf\" value=\"" + EscapeHTML(csrfToken) + "\"><button type=\"submit\">Delete</button></form>")
			buf.WriteString("</td></tr>\n")
		}
		buf.WriteString("</table>\n")
		if hasMore {
			buf.WriteString("<p><a href=\"/admin/?pages=2\">Load more</a></p>\n")
		}
	})
}

func writeToggleForm(buf *bytes.Buffer, id string, publish bool, label, csrfToken string) {
	value := "false"
	if publish {
		value = "true"
	}
	buf.WriteString("<form method=\"post\" action=\"/admin/post/" + EscapeHTML(id) + "/publish/\">")
	buf.WriteString("<input type=\"hidden\" name=\"_csrf\" value=\"" + EscapeHTML(csrfToken) + "\">")
	buf.WriteString("<input type=\"hidden\" name=\"published\" value=\"" + value + "\">")
	buf.WriteString("<button type=\"submit\">" + EscapeHTML(label) + "</button></form>")
}

// NotFoundPage renders the styled 404 page.
func NotFoundPage(cfg SiteConfig) templ.Component {
	return page("Not found", cfg, func(buf *bytes.Buffer) {
		buf.WriteString("<h1>404</h1>\n<p>That page does not exist.</p>\n<p><a href=\"/\">Back to " + EscapeHTML(cfg.Name) + "</a></p>\n")
	})
}

// ServerErrorPage renders the styled 500 page.
func ServerErrorPage(cfg SiteConfig) templ.Component {
	return page("Something went wrong", cfg, func(buf *bytes.Buffer) {
		buf.WriteString("<h1>500</h1>\n<p>Something went wrong on our side.</p>\n<p><a href=\"/\">Back to " + EscapeHTML(cfg.Name) + "</a></p>\n")
	})
}
