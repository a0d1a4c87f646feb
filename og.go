package sharegate

import (
	"bytes"
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
)

// maxDescription is the longest description crawlers reliably display
// (WhatsApp truncates previews at 200 characters).
const maxDescription = 200

// htmlEscaper covers the five characters that must never reach the document
// unescaped. Applied to every dynamic string placed in the share card.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes text for safe interpolation into HTML attributes and body.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// StripHTML reduces an HTML fragment to its visible text. Script and style
// contents are skipped; runs of whitespace collapse to single spaces.
func StripHTML(fragment string) string {
	tok := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := tok.TagName()
			if n := string(name); n == "script" || n == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			if n := string(name); (n == "script" || n == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(tok.Text())
				b.WriteByte(' ')
			}
		}
	}
}

// truncate shortens s to at most max bytes, appending "..." when it had to
// cut. The cut backs off to a rune boundary so multibyte text stays valid.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// ResolveMeta computes the share-card fields for a post using the ordered
// fallback chains. A zero post yields the site-default card.
func ResolveMeta(post Post, shareURL string, cfg SiteConfig) PageMeta {
	meta := PageMeta{
		URL:      shareURL,
		SiteName: cfg.Name,
		Locale:   cfg.Locale,
		OGType:   "website",
	}

	meta.Title = strings.TrimSpace(post.Title)
	if meta.Title == "" {
		meta.Title = cfg.Name
	} else {
		meta.OGType = "article"
	}

	// Description precedence: excerpt, description, subheading, stripped
	// content, then a title-based fallback. Always capped at 200 chars.
	switch {
	case strings.TrimSpace(post.Excerpt) != "":
		meta.Description = strings.TrimSpace(post.Excerpt)
	case strings.TrimSpace(post.Description) != "":
		meta.Description = strings.TrimSpace(post.Description)
	case strings.TrimSpace(post.Subheading) != "":
		meta.Description = strings.TrimSpace(post.Subheading)
	case strings.TrimSpace(post.Content) != "":
		meta.Description = StripHTML(post.Content)
	}
	if meta.Description == "" {
		if post.Title != "" {
			meta.Description = "Read more: " + meta.Title
		} else {
			meta.Description = cfg.Description
		}
	}
	meta.Description = truncate(meta.Description, maxDescription)

	// Image precedence: featured image, video thumbnail, video URL, favicon.
	origin := strings.TrimSuffix(cfg.URL, "/")
	for _, candidate := range []string{
		post.FeaturedImage.URL,
		post.FeaturedVideo.Thumbnail,
		post.FeaturedVideo.URL,
	} {
		if img := NormalizeImageURL(candidate, origin); img != "" {
			meta.Image = img
			break
		}
	}
	if meta.Image == "" {
		meta.Image = origin + "/favicon.png"
	}
	meta.ImageAlt = meta.Title

	return meta
}

// ShareCard renders the complete Open Graph HTML document for a share URL.
// The body stays readable for non-JS clients; everyone else is redirected to
// the canonical URL by the meta refresh and the inline script.
func ShareCard(meta PageMeta) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		writeShareCard(&buf, meta)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeShareCard(buf *bytes.Buffer, meta PageMeta) {
	title := EscapeHTML(meta.Title)
	desc := EscapeHTML(meta.Description)
	pageURL := EscapeHTML(meta.URL)
	site := EscapeHTML(meta.SiteName)
	img := EscapeHTML(meta.Image)
	imgAlt := EscapeHTML(meta.ImageAlt)

	buf.WriteString("<!DOCTYPE html>\n<html lang=\"" + EscapeHTML(strings.ReplaceAll(meta.Locale, "_", "-")) + "\">\n<head>\n")
	buf.WriteString("<meta charset=\"utf-8\">\n")
	buf.WriteString("<title>" + title + "</title>\n")
	buf.WriteString("<meta name=\"description\" content=\"" + desc + "\">\n")

	buf.WriteString("<meta property=\"og:type\" content=\"" + meta.OGType + "\">\n")
	buf.WriteString("<meta property=\"og:url\" content=\"" + pageURL + "\">\n")
	buf.WriteString("<meta property=\"og:title\" content=\"" + title + "\">\n")
	buf.WriteString("<meta property=\"og:description\" content=\"" + desc + "\">\n")
	buf.WriteString("<meta property=\"og:site_name\" content=\"" + site + "\">\n")
	buf.WriteString("<meta property=\"og:locale\" content=\"" + EscapeHTML(meta.Locale) + "\">\n")
	if meta.Image != "" {
		buf.WriteString("<meta property=\"og:image\" content=\"" + img + "\">\n")
		buf.WriteString("<meta property=\"og:image:secure_url\" content=\"" + img + "\">\n")
		buf.WriteString("<meta property=\"og:image:url\" content=\"" + img + "\">\n")
		buf.WriteString("<meta property=\"og:image:type\" content=\"image/jpeg\">\n")
		buf.WriteString("<meta property=\"og:image:width\" content=\"1200\">\n")
		buf.WriteString("<meta property=\"og:image:height\" content=\"630\">\n")
		buf.WriteString("<meta property=\"og:image:alt\" content=\"" + imgAlt + "\">\n")
	}

	buf.WriteString("<meta name=\"twitter:card\" content=\"summary_large_image\">\n")
	buf.WriteString("<meta name=\"twitter:title\" content=\"" + title + "\">\n")
	buf.WriteString("<meta name=\"twitter:description\" content=\"" + desc + "\">\n")
	if meta.Image != "" {
		buf.WriteString("<meta name=\"twitter:image\" content=\"" + img + "\">\n")
		buf.WriteString("<meta name=\"twitter:image:alt\" content=\"" + imgAlt + "\">\n")
	}

	buf.WriteString("<link rel=\"canonical\" href=\"" + pageURL + "\">\n")
	buf.WriteString("<meta http-equiv=\"refresh\" content=\"0;url=" + pageURL + "\">\n")
	buf.WriteString("</head>\n<body>\n")
	buf.WriteString("<h1>" + title + "</h1>\n")
	if meta.Image != "" {
		buf.WriteString("<img src=\"" + img + "\" alt=\"" + imgAlt + "\" width=\"600\">\n")
	}
	buf.WriteString("<p>" + desc + "</p>\n")
	buf.WriteString("<p>Source: " + site + "</p>\n")
	buf.WriteString("<p><a href=\"" + pageURL + "\">Continue reading</a></p>\n")
	buf.WriteString("<script>window.location.replace(" + jsString(meta.URL) + ");</script>\n")
	buf.WriteString("</body>\n</html>\n")
}

// jsString quotes a URL for safe embedding inside the redirect script.
func jsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "<", `\x3c`, ">", `\x3e`, "\n", `\n`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}
